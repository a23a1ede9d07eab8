package browser_test

import (
	"context"
	"testing"

	"github.com/playwright-community/playwright-go"
)

// TestRegistration_GuardianSignsUpChild covers the public happy path:
// a guardian fills the form and lands on the success panel, and the
// record is persisted with pending status.
func TestRegistration_GuardianSignsUpChild(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	app := newTestApp(t)
	page := app.newPage(t)

	app.submitRegistration(t, page, "Ana Clara Souza")

	// The form redirects to the success panel
	err := page.Locator("text=Inscrição Realizada com Sucesso").WaitFor(playwright.LocatorWaitForOptions{
		Timeout: playwright.Float(5000),
	})
	if err != nil {
		t.Fatalf("success panel not visible: %v", err)
	}

	// Verify the record reached storage
	regs, err := app.Stores.RegistrationStore.List(context.Background())
	if err != nil {
		t.Fatalf("failed to list registrations: %v", err)
	}
	if len(regs) != 1 {
		t.Fatalf("got %d registrations, want 1", len(regs))
	}
	if regs[0].ChildName != "Ana Clara Souza" {
		t.Errorf("child name = %q", regs[0].ChildName)
	}
	if regs[0].Status != "pendente" {
		t.Errorf("status = %q, want pendente", regs[0].Status)
	}
}

// TestRegistration_ValidationKeepsTypedValues covers the whole-object
// validation contract: a submit with a missing field re-renders the form
// with every error at once and the typed values preserved.
func TestRegistration_ValidationKeepsTypedValues(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	app := newTestApp(t)
	page := app.newPage(t)

	_, err := page.Goto(app.BaseURL + "/inscricao")
	if err != nil {
		t.Fatalf("failed to navigate to registration form: %v", err)
	}

	// Fill only part of the form; leave name, whatsapp and consents empty
	if err := page.Locator("input[name=birthDate]").Fill("10/05/2016"); err != nil {
		t.Fatalf("failed to fill birth date: %v", err)
	}
	if err := page.Locator("input[name=guardianName]").Fill("Maria Silva"); err != nil {
		t.Fatalf("failed to fill guardian name: %v", err)
	}
	if err := page.Locator("button[type=submit]").Click(); err != nil {
		t.Fatalf("failed to submit form: %v", err)
	}

	// Multiple field errors render in one pass
	errorCount, err := page.Locator(".field-error").Count()
	if err != nil {
		t.Fatalf("failed to count field errors: %v", err)
	}
	if errorCount < 2 {
		t.Errorf("got %d field errors, want several at once", errorCount)
	}

	// Typed values survive the round trip
	guardian, err := page.Locator("input[name=guardianName]").InputValue()
	if err != nil {
		t.Fatalf("failed to read guardian name: %v", err)
	}
	if guardian != "Maria Silva" {
		t.Errorf("guardian name = %q, want preserved value", guardian)
	}
}

// TestRegistration_DuplicateChildRejected covers the duplicate-name guard.
func TestRegistration_DuplicateChildRejected(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	app := newTestApp(t)
	page := app.newPage(t)

	app.submitRegistration(t, page, "Bruno Costa")
	err := page.Locator("text=Inscrição Realizada com Sucesso").WaitFor(playwright.LocatorWaitForOptions{
		Timeout: playwright.Float(5000),
	})
	if err != nil {
		t.Fatalf("first registration did not succeed: %v", err)
	}

	app.submitRegistration(t, page, "Bruno Costa")
	err = page.Locator("text=já foi inscrita anteriormente").WaitFor(playwright.LocatorWaitForOptions{
		Timeout: playwright.Float(5000),
	})
	if err != nil {
		t.Fatalf("duplicate error not visible: %v", err)
	}
}

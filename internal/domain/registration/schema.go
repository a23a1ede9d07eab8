package registration

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// birthDateLayout is the form's date format (DD/MM/AAAA).
const birthDateLayout = "02/01/2006"

var whatsappPattern = regexp.MustCompile(`^\(\d{2}\) \d{5}-\d{4}$`)

// Input mirrors the raw registration form. All text fields arrive as
// strings; the schema turns a valid Input into a normalized
// Registration draft, or into field-level errors. No partial
// normalization is ever returned.
type Input struct {
	ChildName                 string `json:"childName" validate:"required,min=3,max=100"`
	BirthDate                 string `json:"birthDate" validate:"required"`
	GuardianName              string `json:"guardianName" validate:"required,min=3,max=100"`
	GuardianWhatsapp          string `json:"guardianWhatsapp" validate:"required,whatsapp_br"`
	AgeGroup                  string `json:"ageGroup" validate:"required"`
	HasDietaryRestriction     string `json:"hasDietaryRestriction" validate:"required,oneof=sim nao"`
	DietaryRestrictionDetails string `json:"dietaryRestrictionDetails" validate:"max=500"`
	InfoConsent               bool   `json:"infoConsent" validate:"eq=true"`
	SupervisionConsent        bool   `json:"supervisionConsent" validate:"eq=true"`
}

// FieldError is one violated rule, addressed by the form field path.
type FieldError struct {
	Field   string
	Message string
}

// FieldErrors is the full set of violations from one validation pass.
type FieldErrors []FieldError

// Error implements the error interface.
func (fe FieldErrors) Error() string {
	msgs := make([]string, len(fe))
	for i, e := range fe {
		msgs[i] = e.Field + ": " + e.Message
	}
	return strings.Join(msgs, "; ")
}

// ByField returns a field→message map for template rendering. The first
// message per field wins.
func (fe FieldErrors) ByField() map[string]string {
	m := make(map[string]string, len(fe))
	for _, e := range fe {
		if _, ok := m[e.Field]; !ok {
			m[e.Field] = e.Message
		}
	}
	return m
}

// fieldMessages maps "field.tag" to the Portuguese message shown to the
// guardian filling in the form.
var fieldMessages = map[string]string{
	"childName.required":                        "O nome completo da criança é obrigatório.",
	"childName.min":                             "O nome completo da criança é obrigatório.",
	"childName.max":                             "O nome da criança é muito longo.",
	"birthDate.required":                        "A data de nascimento é obrigatória.",
	"birthDate.dateformat":                      "Data de nascimento inválida. Use o formato DD/MM/AAAA.",
	"birthDate.maxage":                          "A idade máxima é 17 anos.",
	"birthDate.minage":                          "A idade mínima é 2 anos.",
	"guardianName.required":                     "O nome completo do responsável é obrigatório.",
	"guardianName.min":                          "O nome completo do responsável é obrigatório.",
	"guardianName.max":                          "O nome do responsável é muito longo.",
	"guardianWhatsapp.required":                 "O telefone (WhatsApp) do responsável é obrigatório.",
	"guardianWhatsapp.whatsapp_br":              "Informe o WhatsApp no formato (DD) DDDDD-DDDD.",
	"ageGroup.required":                         "Selecione a turma da criança.",
	"ageGroup.turma":                            "Selecione a turma da criança.",
	"hasDietaryRestriction.required":            "Informe se a criança tem alguma restrição alimentar.",
	"hasDietaryRestriction.oneof":               "Informe se a criança tem alguma restrição alimentar.",
	"dietaryRestrictionDetails.requireddetails": "Por favor, especifique a restrição alimentar.",
	"dietaryRestrictionDetails.max":             "O texto da restrição alimentar é muito longo.",
	"infoConsent.eq":                            "É necessário confirmar a leitura das informações do evento.",
	"supervisionConsent.eq":                     "É necessário confirmar o acompanhamento para crianças do Maternal.",
}

// Schema validates registration form input as a single whole-object
// pass, so rules that depend on sibling fields (dietary details, the
// Amiguinho age exemption) are evaluated against the full draft.
type Schema struct {
	validate *validator.Validate
	now      func() time.Time
}

// NewSchema builds a Schema. now is injectable for tests; nil means
// time.Now.
func NewSchema(now func() time.Time) *Schema {
	if now == nil {
		now = time.Now
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("whatsapp_br", func(fl validator.FieldLevel) bool {
		return whatsappPattern.MatchString(fl.Field().String())
	})

	s := &Schema{validate: v, now: now}
	v.RegisterStructValidation(s.crossFieldRules, Input{})
	return s
}

// crossFieldRules implements the rules a per-field tag cannot express:
// turma membership, birth-date parsing and the age range with its
// Amiguinho exemption, and the conditionally required dietary details.
func (s *Schema) crossFieldRules(sl validator.StructLevel) {
	input := sl.Current().Interface().(Input)

	if input.AgeGroup != "" && !ValidAgeGroup(input.AgeGroup) {
		sl.ReportError(input.AgeGroup, "ageGroup", "AgeGroup", "turma", "")
	}

	if input.BirthDate != "" {
		dob, err := ParseBirthDate(input.BirthDate)
		switch {
		case err != nil:
			sl.ReportError(input.BirthDate, "birthDate", "BirthDate", "dateformat", "")
		case input.AgeGroup != AgeGroupAmiguinho:
			now := s.now()
			if dob.After(now) {
				sl.ReportError(input.BirthDate, "birthDate", "BirthDate", "minage", "")
			} else if age := AgeOf(dob, now); age > MaxAge {
				sl.ReportError(input.BirthDate, "birthDate", "BirthDate", "maxage", "")
			} else if age < MinAge {
				sl.ReportError(input.BirthDate, "birthDate", "BirthDate", "minage", "")
			}
		}
	}

	if input.HasDietaryRestriction == DietarySim && strings.TrimSpace(input.DietaryRestrictionDetails) == "" {
		sl.ReportError(input.DietaryRestrictionDetails, "dietaryRestrictionDetails", "DietaryRestrictionDetails", "requireddetails", "")
	}
}

// ParseBirthDate parses a DD/MM/AAAA string into a calendar-valid date
// with year > 1900.
func ParseBirthDate(s string) (time.Time, error) {
	t, err := time.Parse(birthDateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	if t.Year() <= 1900 {
		return time.Time{}, errors.New("birth year must be after 1900")
	}
	return t, nil
}

// ParseAndValidate runs the whole-object validation pass.
// PRE: input carries the raw form values
// POST: Returns a normalized draft and nil, or a zero Registration and
// every violated field with its Portuguese message
func (s *Schema) ParseAndValidate(input Input) (Registration, FieldErrors) {
	input.ChildName = strings.TrimSpace(input.ChildName)
	input.GuardianName = strings.TrimSpace(input.GuardianName)
	input.GuardianWhatsapp = strings.TrimSpace(input.GuardianWhatsapp)
	input.BirthDate = strings.TrimSpace(input.BirthDate)

	if err := s.validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Registration{}, FieldErrors{{Field: "form", Message: "Dados inválidos."}}
		}
		out := make(FieldErrors, 0, len(verrs))
		for _, fe := range verrs {
			msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]
			if !ok {
				msg = "Campo inválido."
			}
			out = append(out, FieldError{Field: fe.Field(), Message: msg})
		}
		return Registration{}, out
	}

	dob, err := ParseBirthDate(input.BirthDate)
	if err != nil {
		return Registration{}, FieldErrors{{Field: "birthDate", Message: fieldMessages["birthDate.dateformat"]}}
	}

	reg := Registration{
		ChildName:             input.ChildName,
		BirthDate:             dob,
		GuardianName:          input.GuardianName,
		GuardianWhatsapp:      input.GuardianWhatsapp,
		AgeGroup:              input.AgeGroup,
		HasDietaryRestriction: input.HasDietaryRestriction,
		InfoConsent:           input.InfoConsent,
		SupervisionConsent:    input.SupervisionConsent,
	}
	if input.HasDietaryRestriction == DietarySim {
		reg.DietaryRestrictionDetails = strings.TrimSpace(input.DietaryRestrictionDetails)
	}
	return reg, nil
}

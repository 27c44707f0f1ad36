package importer

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/alexanderramin/gradpath/internal/canonical"
	"github.com/alexanderramin/gradpath/internal/rules"
	"github.com/go-playground/validator/v10"
)

var structValidator = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("course_code", func(fl validator.FieldLevel) bool {
		return canonical.IsCode(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
})

// ValidateCatalogFile checks a catalog file before conversion and returns
// every problem found. Rules are validated the way they will be evaluated:
// convertible rules must pass shape and semantic checks, and legacy rules
// that cannot be converted must still have a known legacy shape.
func ValidateCatalogFile(file *CatalogFile) []error {
	var errs []error
	errs = append(errs, validateStruct(file)...)

	termCodes := make(map[string]bool)
	for i, t := range file.Terms {
		if termCodes[t.Code] {
			errs = append(errs, fmt.Errorf("terms[%d].code: duplicate term %q", i, t.Code))
		}
		termCodes[t.Code] = true
		if campusFor(t.Campus, file.Defaults) == "" {
			errs = append(errs, fmt.Errorf("terms[%d].campus is required (or set defaults.campus)", i))
		}
	}

	courseCodes := make(map[string]bool)
	for i, c := range file.Courses {
		if courseCodes[c.Code] {
			errs = append(errs, fmt.Errorf("courses[%d].code: duplicate course %q", i, c.Code))
		}
		courseCodes[c.Code] = true
	}

	type offeringKey struct{ course, term string }
	offerings := make(map[offeringKey]bool)
	for i, o := range file.Offerings {
		prefix := fmt.Sprintf("offerings[%d]", i)
		if o.Course != "" && !courseCodes[o.Course] {
			errs = append(errs, fmt.Errorf("%s.course: course %q not found in courses", prefix, o.Course))
		}
		if o.Term != "" && !termCodes[o.Term] {
			errs = append(errs, fmt.Errorf("%s.term: term %q not found in terms", prefix, o.Term))
		}
		key := offeringKey{o.Course, o.Term}
		if offerings[key] {
			errs = append(errs, fmt.Errorf("%s: duplicate offering of %q in %q", prefix, o.Course, o.Term))
		}
		offerings[key] = true
	}

	type ruleKey struct{ course, kind string }
	seenRules := make(map[ruleKey]bool)
	for i, r := range file.Rules {
		prefix := fmt.Sprintf("rules[%d]", i)
		if r.Course != "" && !courseCodes[r.Course] {
			errs = append(errs, fmt.Errorf("%s.course: course %q not found in courses", prefix, r.Course))
		}
		key := ruleKey{r.Course, ruleKind(r.Kind)}
		if seenRules[key] {
			errs = append(errs, fmt.Errorf("%s: duplicate %s rule for %q", prefix, key.kind, r.Course))
		}
		seenRules[key] = true
		if err := validateRule(r.Rule); err != nil {
			errs = append(errs, fmt.Errorf("%s.rule: %w", prefix, err))
		}
	}

	type programKey struct{ code, campus string }
	programs := make(map[programKey]bool)
	for i, p := range file.Programs {
		prefix := fmt.Sprintf("programs[%d]", i)
		key := programKey{p.Code, campusFor(p.Campus, file.Defaults)}
		if key.campus == "" {
			errs = append(errs, fmt.Errorf("%s.campus is required (or set defaults.campus)", prefix))
		}
		if programs[key] {
			errs = append(errs, fmt.Errorf("%s: duplicate program %q on campus %q", prefix, key.code, key.campus))
		}
		programs[key] = true
		if p.EffectiveTo != "" && p.EffectiveFrom != "" && p.EffectiveTo < p.EffectiveFrom {
			errs = append(errs, fmt.Errorf("%s.effective_to %q must not be before effective_from %q", prefix, p.EffectiveTo, p.EffectiveFrom))
		}
		for j, req := range p.Requirements {
			if err := validateRule(req.Rule); err != nil {
				errs = append(errs, fmt.Errorf("%s.requirements[%d].rule: %w", prefix, j, err))
			}
		}
	}

	return errs
}

func validateStruct(file *CatalogFile) []error {
	err := structValidator().Struct(file)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []error{err}
	}
	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "CatalogFile.")
		if fe.Param() != "" {
			errs = append(errs, fmt.Errorf("%s: failed %s=%s (got %v)", field, fe.Tag(), fe.Param(), fe.Value()))
		} else {
			errs = append(errs, fmt.Errorf("%s: failed %s (got %v)", field, fe.Tag(), fe.Value()))
		}
	}
	return errs
}

func validateRule(v RuleValue) error {
	if v.IsZero() {
		return errors.New("rule is required")
	}
	rule, err := rules.ParseStrict(v.JSON)
	if err != nil {
		return err
	}
	return rules.ValidateCompat(rule)
}

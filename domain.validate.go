package main

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// readDateTag is reported when read_date falls before published_date.
const readDateTag = "after_published"

// entityValidator is the single source of the catalog field rules. Both
// the create and the edit paths run through it, there is no duplicated
// rule set anywhere else.
var entityValidator = newEntityValidator()

func newEntityValidator() *validator.Validate {
	v := validator.New()

	// Report fields under their json names so the error map matches
	// what clients submitted.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" {
			return fld.Name
		}
		if i := strings.Index(name, ","); i != -1 {
			return name[:i]
		}
		return name
	})

	// required would accept whitespace-only titles.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	v.RegisterStructValidation(bookCrossFieldRules, Book{})
	return v
}

// bookCrossFieldRules holds the rules spanning more than one field.
func bookCrossFieldRules(sl validator.StructLevel) {
	book, ok := sl.Current().Interface().(Book)
	if !ok {
		return
	}
	if book.PublishedDate.IsZero() {
		sl.ReportError(book.PublishedDate, "published_date", "PublishedDate", "required", "")
		return
	}
	if book.ReadDate != nil && book.ReadDate.Time.Before(book.PublishedDate.Time) {
		sl.ReportError(book.ReadDate, "read_date", "ReadDate", readDateTag, "")
	}
}

// ValidateBook checks a candidate book against the full rule set and
// returns one message per violated field, or nil when the book is valid.
// Every independent field is checked, the first violated rule per field
// is the one reported.
func ValidateBook(book Book) map[string]string {
	return fieldErrors(entityValidator.Struct(book))
}

// ValidateAuthor checks the presence rules on an author candidate.
func ValidateAuthor(author Author) map[string]string {
	return fieldErrors(entityValidator.Struct(author))
}

// ValidateUser checks the presence rules on a user candidate.
func ValidateUser(user User) map[string]string {
	return fieldErrors(entityValidator.Struct(user))
}

func fieldErrors(err error) map[string]string {
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"payload": "is not valid"}
	}
	errs := make(map[string]string, len(verrs))
	for _, e := range verrs {
		if _, exists := errs[e.Field()]; !exists {
			errs[e.Field()] = validationMessage(e.Field(), e.Tag(), e.Param())
		}
	}
	return errs
}

func validationMessage(field, tag, param string) string {
	switch field + "." + tag {
	case "title.notblank":
		return "The title is mandatory"
	case "title.max":
		return "The title must be less than 50 characters long"
	case "read_date." + readDateTag:
		return "The read date must be after the published date"
	}

	switch tag {
	case "notblank", "required":
		return "must be provided"
	case "min":
		return "must be at least " + param
	case "max":
		return "must not exceed " + param
	case "oneof":
		return "must be one of: " + param
	}
	return "is not valid"
}

package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/form/v4"
	"github.com/go-playground/validator/v10"
)

// Errors maps a field (or "base") to its validation messages.
type Errors map[string][]string

func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func (e Errors) Empty() bool {
	return len(e) == 0
}

// errMalformedBody signals a body that could not be parsed at all.
var errMalformedBody = errors.New("invalid request body")

const maxBodyBytes = 1 << 20

var (
	formDecoder = form.NewDecoder()
	validate    = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bind decodes a JSON or form body into dst, an allow-list struct whose
// pointer fields stay nil when absent. Unknown fields are dropped. A body
// that is not parseable yields errMalformedBody; a value of the wrong type
// yields field errors.
func bind(w http.ResponseWriter, r *http.Request, dst any) (Errors, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		return bindForm(r, dst)
	default:
		return bindJSON(r, dst)
	}
}

// bindJSON flattens a JSON object into form values so both body types share
// one decoder. Strings, numbers and booleans are converted to the field's type
// the same way form values are: "5" and 5 both bind to an int.
func bindJSON(r *http.Request, dst any) (Errors, error) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, errMalformedBody
	}

	t := reflect.TypeOf(dst).Elem()
	values := url.Values{}
	errs := Errors{}
	for key, raw := range body {
		switch v := raw.(type) {
		case nil:
		case string:
			values.Set(key, v)
		case json.Number:
			values.Set(key, v.String())
		case bool:
			values.Set(key, strconv.FormatBool(v))
		default:
			if fieldType(t, key) != nil {
				errs.Add(key, "is invalid")
			}
		}
	}
	if !errs.Empty() {
		return errs, nil
	}
	return decodeValues(values, dst)
}

func bindForm(r *http.Request, dst any) (Errors, error) {
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, errMalformedBody
	}
	return decodeValues(r.PostForm, dst)
}

// decodeValues fills dst from values, reporting unconvertible values per field.
func decodeValues(values url.Values, dst any) (Errors, error) {
	err := formDecoder.Decode(dst, values)
	if err == nil {
		return nil, nil
	}

	var decodeErrs form.DecodeErrors
	if !errors.As(err, &decodeErrs) {
		return nil, errMalformedBody
	}
	errs := Errors{}
	t := reflect.TypeOf(dst).Elem()
	for field := range decodeErrs {
		errs.Add(field, typeMessage(fieldType(t, field)))
	}
	return errs, nil
}

func fieldType(t reflect.Type, name string) reflect.Type {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if tag, _, _ := strings.Cut(f.Tag.Get("form"), ","); tag == name {
			return f.Type
		}
	}
	return nil
}

func typeMessage(t reflect.Type) string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "is invalid"
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "is not a number"
	case reflect.Bool:
		return "is not a boolean"
	default:
		return "is invalid"
	}
}

// validateRecord runs struct tag validation and converts failures into
// field messages.
func validateRecord(v any) Errors {
	errs := Errors{}
	err := validate.Struct(v)
	if err == nil {
		return errs
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs.Add("base", "is invalid")
		return errs
	}
	for _, fe := range fieldErrs {
		errs.Add(fe.Field(), fieldMessage(fe))
	}
	return errs
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "can't be blank"
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "email":
		return "is invalid"
	case "min":
		return fmt.Sprintf("is too short (minimum is %s characters)", fe.Param())
	case "max":
		return fmt.Sprintf("is too long (maximum is %s characters)", fe.Param())
	default:
		return "is invalid"
	}
}

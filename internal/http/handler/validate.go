package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

var (
	errBadJSON = errors.New("request body must be a JSON object")

	intPattern = regexp.MustCompile(`^[-+]?[0-9]+$`)

	validate = newValidator()
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
	_ = v.RegisterValidation("isint", func(fl validator.FieldLevel) bool {
		return isInt(fl.Field().String())
	})
	return v
}

// isInt accepts optionally signed decimal digits, leading zeros included,
// whose value fits in an int.
func isInt(s string) bool {
	if !intPattern.MatchString(s) {
		return false
	}
	_, err := strconv.Atoi(s)
	return err == nil
}

// FieldError is one entry of a 400 response body.
type FieldError struct {
	Type     string `json:"type"`
	Value    any    `json:"value,omitempty"`
	Msg      string `json:"msg"`
	Path     string `json:"path"`
	Param    string `json:"param"`
	Location string `json:"location"`
}

// fields holds the raw members of a JSON object body.
type fields map[string]json.RawMessage

// decodeFields reads a JSON object body. An empty body is an empty object.
func decodeFields(r *http.Request) (fields, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return fields{}, nil
	}
	var f fields
	if err := json.Unmarshal(raw, &f); err != nil || f == nil {
		return nil, errBadJSON
	}
	return f, nil
}

// text returns the string form of a member: strings as is, numbers in
// their shortest decimal form, booleans as their literal, null as "". Absent members give nil. Objects
// and arrays have no usable string form and also give "".
func (f fields) text(name string) *string {
	if _, ok := f[name]; !ok {
		return nil
	}
	var s string
	switch v := f.value(name).(type) {
	case string:
		s = v
	case json.Number:
		s = numberText(v)
	case bool:
		s = strconv.FormatBool(v)
	}
	return &s
}

// numberText prints a JSON number as its float64 value, so 1965.0 and
// 1.965e3 both read "1965".
func numberText(n json.Number) string {
	f, err := n.Float64()
	if err != nil || math.IsInf(f, 0) || math.Abs(f) >= 1e21 {
		return n.String()
	}
	if f == 0 {
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// value returns the decoded member for echoing back in errors.
func (f fields) value(name string) any {
	raw, ok := f[name]
	if !ok {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}

// fieldErrors converts validator output into response entries. messages maps
// a JSON field name to its message.
func fieldErrors(err error, f fields, location string, messages map[string]string) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		out = append(out, FieldError{
			Type:     "field",
			Value:    f.value(name),
			Msg:      messages[name],
			Path:     name,
			Param:    name,
			Location: location,
		})
	}
	return out
}

func writeValidation(w http.ResponseWriter, errs []FieldError) {
	writeJSON(w, http.StatusBadRequest, map[string]any{"errors": errs})
}

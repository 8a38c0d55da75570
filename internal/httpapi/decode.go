package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/mateusmacedo/van-bff/internal/apperr"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// mensagens usam o nome do campo no JSON
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
	})
	return validate
}

// Decode lê o corpo JSON em dst e valida as tags `validate`.
func Decode(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("Corpo da requisição vazio")
		}
		return apperr.Wrap(err, apperr.KindValidation, apperr.CodeValidation, "Corpo da requisição inválido")
	}
	return Validate(dst)
}

// Validate aplica as regras de validação e devolve a primeira violação.
func Validate(value interface{}) error {
	err := validatorInstance().Struct(value)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperr.Wrap(err, apperr.KindValidation, apperr.CodeValidation, "Dados inválidos")
	}
	return apperr.Wrap(err, apperr.KindValidation, apperr.CodeValidation, fieldMessage(fieldErrs[0]))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("O campo %s é obrigatório", field)
	case "email":
		return fmt.Sprintf("O campo %s deve ser um e-mail válido", field)
	case "min":
		return fmt.Sprintf("O campo %s deve ter no mínimo %s caracteres", field, fe.Param())
	case "max":
		return fmt.Sprintf("O campo %s deve ter no máximo %s caracteres", field, fe.Param())
	case "len":
		return fmt.Sprintf("O campo %s deve ter %s caracteres", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("O campo %s deve ser um de: %s", field, fe.Param())
	case "datetime":
		return fmt.Sprintf("O campo %s deve estar no formato %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("O campo %s deve ser maior que %s", field, fe.Param())
	default:
		return fmt.Sprintf("O campo %s é inválido", field)
	}
}

// URLParamID lê um parâmetro de rota numérico e positivo.
func URLParamID(r *http.Request, name string) (uint, error) {
	return ParseID(chi.URLParam(r, name), name)
}

// ParseID converte um identificador vindo da URL ou da query string.
func ParseID(raw, name string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.Validation(fmt.Sprintf("Parâmetro %s inválido", name))
	}
	return uint(id), nil
}

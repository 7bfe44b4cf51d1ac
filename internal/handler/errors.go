package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"rentease-service/internal/model"
	"rentease-service/internal/service"
	"rentease-service/internal/workflow"
)

const maxBodyBytes = int64(1 << 20)

// respondError maps service errors onto HTTP status codes.
func respondError(c *gin.Context, err error) {
	status, msg := http.StatusInternalServerError, "internal error"
	switch {
	case errors.Is(err, service.ErrValidation):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, workflow.ErrUnknownStatus):
		status, msg = http.StatusBadRequest, workflow.ErrUnknownStatus.Error()
	case errors.Is(err, service.ErrUnauthenticated):
		status, msg = http.StatusUnauthorized, service.ErrUnauthenticated.Error()
	case errors.Is(err, workflow.ErrNotAdmin):
		status, msg = http.StatusForbidden, workflow.ErrNotAdmin.Error()
	case errors.Is(err, service.ErrForbidden):
		status, msg = http.StatusForbidden, "you are not allowed to do this"
	case errors.Is(err, service.ErrNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, workflow.ErrInvalidTransition):
		status, msg = http.StatusConflict, workflow.ErrInvalidTransition.Error()
	}
	if status == http.StatusInternalServerError {
		log.Printf("[%s %s] %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": msg})
}

// bindJSON binds a typed request body, replying 400 when a binding rule fails.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return false
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": strings.Join(msgs, "; ")})
	return false
}

func fieldMessage(fe validator.FieldError) string {
	name := jsonName(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters long", name, fe.Param())
	case "number":
		return fmt.Sprintf("%s must contain only digits", name)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", name)
	}
	return fmt.Sprintf("%s is invalid", name)
}

func jsonName(field string) string {
	r, size := utf8.DecodeRuneInString(field)
	return string(unicode.ToLower(r)) + field[size:]
}

// bindDocument decodes a JSON object body keeping numbers exact.
func bindDocument(c *gin.Context) (model.Document, error) {
	dec := json.NewDecoder(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	dec.UseNumber()
	doc := model.Document{}
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: invalid payload", service.ErrValidation)
	}
	return doc, nil
}

// nonNil keeps empty collections rendering as [] instead of null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

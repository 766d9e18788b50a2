package handlers

import "github.com/go-playground/validator/v10"

// validate checks socket payloads against the same `binding` tags the HTTP
// surface enforces through Gin.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	return v
}

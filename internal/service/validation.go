package service

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/maxviazov/directory-service/internal/model"
)

// includeKey names the query parameter listing relations to embed.
const includeKey = "include"

var validate = validator.New()

func isValidStatus(status string) bool {
	switch status {
	case model.StatusActive, model.StatusInvited, model.StatusArchived:
		return true
	default:
		return false
	}
}

func isValidEmail(email string) bool {
	return validate.Var(email, "email") == nil
}

func checkLength(field, value string, min, max int) *FieldError {
	if ln := len([]rune(value)); ln < min || ln > max {
		return &FieldError{Field: field, Message: fmt.Sprintf("length must be between %d and %d", min, max)}
	}
	return nil
}

func parseID(field, raw string) (uuid.UUID, *FieldError) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, &FieldError{Field: field, Message: "must be a valid UUID"}
	}
	return id, nil
}

// splitIncludes removes the include parameter from query and returns the
// requested relations. Unknown relations are reported as field errors.
func splitIncludes(query url.Values, allowed ...string) (url.Values, []string, []FieldError) {
	raw, ok := query[includeKey]
	if !ok {
		return query, nil, nil
	}
	rest := make(url.Values, len(query))
	for k, v := range query {
		if k != includeKey {
			rest[k] = v
		}
	}

	var (
		includes []string
		ferrs    []FieldError
	)
	for _, v := range raw {
		for _, rel := range strings.Split(v, ",") {
			rel = strings.ToLower(strings.TrimSpace(rel))
			switch {
			case rel == "":
			case !slices.Contains(allowed, rel):
				ferrs = append(ferrs, FieldError{Field: includeKey, Message: "unknown relation " + rel})
			case !slices.Contains(includes, rel):
				includes = append(includes, rel)
			}
		}
	}
	return rest, includes, ferrs
}

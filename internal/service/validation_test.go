package service

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckLength(t *testing.T) {
	assert.Nil(t, checkLength("name", "Acme", 1, 10))
	assert.Nil(t, checkLength("name", "Żółć", 4, 4), "length counts runes")
	fe := checkLength("name", "", 1, 10)
	if assert.NotNil(t, fe) {
		assert.Equal(t, "name", fe.Field)
		assert.Equal(t, "length must be between 1 and 10", fe.Message)
	}
}

func TestIsValidEmailAndStatus(t *testing.T) {
	assert.True(t, isValidEmail("ann@example.com"))
	assert.False(t, isValidEmail("ann@"))
	assert.True(t, isValidStatus("invited"))
	assert.False(t, isValidStatus("deleted"))
}

func TestParseID(t *testing.T) {
	id, fe := parseID("id", " 2f1c8b5e-6a0b-4c35-9d59-9a1f64a0d0f1 ")
	assert.Nil(t, fe)
	assert.Equal(t, "2f1c8b5e-6a0b-4c35-9d59-9a1f64a0d0f1", id.String())

	_, fe = parseID("company_id", "42")
	if assert.NotNil(t, fe) {
		assert.Equal(t, "company_id", fe.Field)
	}
}

func TestSplitIncludes(t *testing.T) {
	q := url.Values{"include": {"Company, company", "owner"}, "status": {"active"}}
	rest, inc, ferrs := splitIncludes(q, "company")

	assert.Equal(t, []string{"company"}, inc)
	assert.Equal(t, url.Values{"status": {"active"}}, rest)
	if assert.Len(t, ferrs, 1) {
		assert.Equal(t, "unknown relation owner", ferrs[0].Message)
	}
	assert.Contains(t, q, "include", "input is left untouched")

	rest, inc, ferrs = splitIncludes(url.Values{"a": {"1"}}, "company")
	assert.Nil(t, inc)
	assert.Nil(t, ferrs)
	assert.Equal(t, url.Values{"a": {"1"}}, rest)
}

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meghan128/sportx-sub001/internal/models"
)

func TestCreateAccount_ExistingEmailIsConflict(t *testing.T) {
	orig := findUserByEmail
	findUserByEmail = func(email string) (models.Users, error) {
		return models.Users{ID: 7, Email: email, AuthStatus: models.AuthStatusApproved}, nil
	}
	defer func() { findUserByEmail = orig }()

	body := `{"email":"jane@example.com","firstName":"Jane","lastName":"Doe"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	CreateAccount(rec, req)

	// No session token for an address someone else registered.
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NotContains(t, rec.Body.String(), "token")
	assert.Contains(t, rec.Body.String(), "already exists")
}

func TestCreateAccount_RequiresEmailAndName(t *testing.T) {
	cases := []string{
		`{"firstName":"Jane","lastName":"Doe"}`,
		`{"email":"jane@example.com"}`,
		`not json`,
	}
	for _, body := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/register", strings.NewReader(body))
		rec := httptest.NewRecorder()
		CreateAccount(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body=%s", body)
	}
}

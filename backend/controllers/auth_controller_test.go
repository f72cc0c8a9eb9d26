package controllers_test

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	resp := doRequest(t, "POST", "/api/auth/register", "", map[string]string{
		"username":      "newuser",
		"email":         "newuser@example.com",
		"password_hash": "password123",
		"target_exam":   "NEET",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.NotEmpty(t, body["token"])
	assert.Equal(t, "newuser", body["user"].(map[string]interface{})["username"])

	resp = doRequest(t, "POST", "/api/auth/login", "", map[string]string{
		"username": "newuser",
		"password": "password123",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.NotEmpty(t, body["token"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	resp := doRequest(t, "POST", "/api/auth/login", "", map[string]string{
		"username": "student",
		"password": "wrong",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestProfileRequiresToken(t *testing.T) {
	resp := doRequest(t, "GET", "/api/user/profile", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = doRequest(t, "GET", "/api/user/profile", studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	assert.Equal(t, "student", body["username"])
	assert.Equal(t, "JEE", body["target_exam"])
}

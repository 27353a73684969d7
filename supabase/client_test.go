package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"nutriflow/config"
	"nutriflow/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method, path, apikey, auth, prefer string
	body                               map[string]any
}

func newTestClient(t *testing.T, serviceKey string, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *[]recorded) {
	t.Helper()
	var reqs []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{
			method: r.Method,
			path:   r.URL.Path,
			apikey: r.Header.Get("apikey"),
			auth:   r.Header.Get("Authorization"),
			prefer: r.Header.Get("Prefer"),
		}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			assert.NoError(t, json.Unmarshal(data, &rec.body))
		}
		reqs = append(reqs, rec)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c := New(config.SupabaseConfig{URL: srv.URL, AnonKey: "anon", ServiceRoleKey: serviceKey})
	return c, &reqs
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestSignUp(t *testing.T) {
	t.Run("bare user response", func(t *testing.T) {
		c, reqs := newTestClient(t, "", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, 200, `{"id":"u-1","email":"ada@example.com","email_confirmed_at":null}`)
		})

		user, err := c.SignUp(context.Background(), "ada@example.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, &models.AuthUser{ID: "u-1", Email: "ada@example.com"}, user)

		require.Len(t, *reqs, 1)
		r := (*reqs)[0]
		assert.Equal(t, http.MethodPost, r.method)
		assert.Equal(t, "/auth/v1/signup", r.path)
		assert.Equal(t, "anon", r.apikey)
		assert.Equal(t, "Bearer anon", r.auth)
		assert.Equal(t, "ada@example.com", r.body["email"])
		assert.Equal(t, "secret1", r.body["password"])
	})

	t.Run("session response", func(t *testing.T) {
		c, _ := newTestClient(t, "", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, 200, `{"access_token":"tok","user":{"id":"u-2","email":"b@example.com","email_confirmed_at":"2025-01-01T00:00:00Z"}}`)
		})

		user, err := c.SignUp(context.Background(), "b@example.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, "u-2", user.ID)
		assert.True(t, user.EmailConfirmed)
	})

	t.Run("no user in response", func(t *testing.T) {
		c, _ := newTestClient(t, "", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, 200, `{}`)
		})

		user, err := c.SignUp(context.Background(), "b@example.com", "secret1")
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("provider errors surface verbatim", func(t *testing.T) {
		tests := []struct {
			name, body, want, code string
		}{
			{"msg", `{"code":422,"error_code":"user_already_exists","msg":"User already registered"}`, "User already registered", "user_already_exists"},
			{"error_description", `{"error":"invalid_request","error_description":"Password should be at least 6 characters."}`, "Password should be at least 6 characters.", ""},
			{"plain text", `Too many requests`, "Too many requests", ""},
		}
		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				c, _ := newTestClient(t, "", func(w http.ResponseWriter, _ *http.Request) {
					writeJSON(w, 422, tc.body)
				})

				_, err := c.SignUp(context.Background(), "ada@example.com", "x")
				var serr *Error
				require.True(t, errors.As(err, &serr))
				assert.Equal(t, tc.want, err.Error())
				assert.Equal(t, 422, serr.Status)
				assert.Equal(t, tc.code, serr.Code)
			})
		}
	})

	t.Run("empty error body", func(t *testing.T) {
		c, _ := newTestClient(t, "", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := c.SignUp(context.Background(), "ada@example.com", "x")
		assert.EqualError(t, err, "supabase request failed with status 502")
	})
}

func TestInsertProfile(t *testing.T) {
	profile := models.Profile{
		ID:        "u-1",
		FullName:  "Ada",
		Diet:      models.Vegan,
		Allergies: []string{"peanuts", "gluten"},
		Goal:      "fat loss",
	}

	t.Run("uses service key when configured", func(t *testing.T) {
		c, reqs := newTestClient(t, "service", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusCreated)
		})

		require.NoError(t, c.InsertProfile(context.Background(), profile))

		r := (*reqs)[0]
		assert.Equal(t, "/rest/v1/profiles", r.path)
		assert.Equal(t, "service", r.apikey)
		assert.Equal(t, "Bearer service", r.auth)
		assert.Equal(t, "return=minimal", r.prefer)
		assert.Equal(t, map[string]any{
			"id":        "u-1",
			"full_name": "Ada",
			"diet":      "Vegan",
			"allergies": []any{"peanuts", "gluten"},
			"goal":      "fat loss",
		}, r.body)
	})

	t.Run("falls back to anon key and sends empty allergies", func(t *testing.T) {
		c, reqs := newTestClient(t, "", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusCreated)
		})

		require.NoError(t, c.InsertProfile(context.Background(), models.Profile{ID: "u-2"}))

		r := (*reqs)[0]
		assert.Equal(t, "anon", r.apikey)
		assert.Equal(t, []any{}, r.body["allergies"])
	})

	t.Run("postgrest error", func(t *testing.T) {
		c, _ := newTestClient(t, "", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, 409, `{"code":"23505","details":null,"hint":null,"message":"duplicate key value violates unique constraint \"profiles_pkey\""}`)
		})

		err := c.InsertProfile(context.Background(), profile)
		var serr *Error
		require.True(t, errors.As(err, &serr))
		assert.Equal(t, `duplicate key value violates unique constraint "profiles_pkey"`, err.Error())
		assert.Equal(t, "23505", serr.Code)
	})
}

func TestDeleteUser(t *testing.T) {
	t.Run("requires service key", func(t *testing.T) {
		c, reqs := newTestClient(t, "", func(w http.ResponseWriter, _ *http.Request) {})
		assert.ErrorIs(t, c.DeleteUser(context.Background(), "u-1"), ErrServiceKeyRequired)
		assert.Empty(t, *reqs)
	})

	t.Run("calls admin endpoint", func(t *testing.T) {
		c, reqs := newTestClient(t, "service", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, 200, `{}`)
		})

		require.NoError(t, c.DeleteUser(context.Background(), "u-1"))
		r := (*reqs)[0]
		assert.Equal(t, http.MethodDelete, r.method)
		assert.Equal(t, "/auth/v1/admin/users/u-1", r.path)
		assert.Equal(t, "service", r.apikey)
		assert.Equal(t, "Bearer service", r.auth)
	})
}

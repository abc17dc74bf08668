package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/classroom-seating/internal/model"
)

const secret = "test-secret"

func TestIssueAndParse(t *testing.T) {
	raw, exp, err := Issue(secret, model.Actor{ID: 42, Role: model.RoleTeacher}, time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	actor, err := Parse(secret, raw)
	require.NoError(t, err)
	assert.Equal(t, model.Actor{ID: 42, Role: model.RoleTeacher}, actor)
}

func TestParseKeepsClassOnlyForDelegates(t *testing.T) {
	raw, _, err := Issue(secret, model.Actor{ID: 20, Role: model.RoleEcoDelegate, ClassID: 3}, time.Hour)
	require.NoError(t, err)
	actor, err := Parse(secret, raw)
	require.NoError(t, err)
	assert.Equal(t, model.Actor{ID: 20, Role: model.RoleEcoDelegate, ClassID: 3}, actor)

	raw, _, err = Issue(secret, model.Actor{ID: 7, Role: model.RoleTeacher, ClassID: 3}, time.Hour)
	require.NoError(t, err)
	actor, err = Parse(secret, raw)
	require.NoError(t, err)
	assert.Zero(t, actor.ClassID)
}

func TestParseRejects(t *testing.T) {
	good, _, err := Issue(secret, model.Actor{ID: 42, Role: model.RoleAdmin}, time.Hour)
	require.NoError(t, err)
	expired, _, err := Issue(secret, model.Actor{ID: 42, Role: model.RoleAdmin}, -time.Minute)
	require.NoError(t, err)
	badRole, _, err := Issue(secret, model.Actor{ID: 42, Role: "janitor"}, time.Hour)
	require.NoError(t, err)
	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role:             model.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	cases := map[string]struct {
		secret, raw string
	}{
		"wrong secret": {"other", good},
		"expired":      {secret, expired},
		"unknown role": {secret, badRole},
		"no subject":   {secret, noSubject},
		"garbage":      {secret, "not.a.token"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(tc.secret, tc.raw)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

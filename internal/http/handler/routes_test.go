package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"verifyapi/internal/catalog"
	"verifyapi/internal/config"
	"verifyapi/internal/http/middleware"
	"verifyapi/internal/identity"
	"verifyapi/internal/model"
	"verifyapi/internal/repository/memory"
	"verifyapi/internal/service"
	"verifyapi/internal/storage"
)

// seededRoutes serves the full route table over in-memory stores holding one
// farm, its applicant's FINCA grant and one uploaded document.
type seededRoutes struct {
	svcs   Services
	farmID string
	doc    *model.Document
	grant  *model.RoleGrant
}

func newSeededRoutes(t *testing.T) *seededRoutes {
	t.Helper()
	cat, err := catalog.NewStatic([]model.DocumentType{{ID: 1, Name: "RUT", Mandatory: true}})
	require.NoError(t, err)

	docs := memory.NewDocumentStore()
	farms := memory.NewFarmStore()
	grants := memory.NewRoleGrantStore()
	farmID := uuid.NewString()
	_, err = farms.Create(context.Background(), &model.Farm{ID: farmID, LegalName: "Flores", Tag: "FL", TaxID: "900", Active: true})
	require.NoError(t, err)

	completeness := service.NewCompletenessService(docs, farms, grants, cat)
	s := &seededRoutes{farmID: farmID, svcs: Services{
		Documents:    service.NewDocumentService(docs, farms, grants, cat, storage.NewMemory()),
		Farms:        service.NewFarmService(farms, grants),
		Roles:        service.NewRoleService(grants, farms, service.NewGate(completeness)),
		Completeness: completeness,
		Catalog:      cat,
	}}

	applicant := identity.WithActor(context.Background(), identity.NewActor("applicant", "CLIENTE"))
	s.grant, err = s.svcs.Roles.RequestRole(applicant, "applicant", model.RoleFinca, model.GrantMetadata{FarmID: farmID})
	require.NoError(t, err)
	s.doc, err = s.svcs.Documents.Submit(applicant, service.SubmitInput{
		FarmID:         farmID,
		DocumentTypeID: 1,
		File:           strings.NewReader("%PDF-1.4"),
		Filename:       "rut.pdf",
		ContentType:    "application/pdf",
		Size:           8,
	})
	require.NoError(t, err)
	return s
}

func (s *seededRoutes) app(auth fiber.Handler) *fiber.App {
	app := newApp()
	RegisterRoutes(app, nil, s.svcs, auth)
	return app
}

func TestRoutes_ReadsRequireFarmAccess(t *testing.T) {
	s := newSeededRoutes(t)
	stranger := s.app(asActor("client-1", "CLIENTE"))

	paths := []string{
		"/documents/pending",
		"/documents/" + s.doc.ID,
		"/documents/" + s.doc.ID + "/download",
		"/documents/" + s.doc.ID + "/download-url",
		"/farms/" + s.farmID + "/documents",
		"/farms/" + s.farmID + "/completeness",
		"/role-grants/pending",
		"/role-grants/" + s.grant.ID,
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			resp, err := stranger.Test(httptest.NewRequest(http.MethodGet, path, nil))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
			assert.Equal(t, "FORBIDDEN", decodeError(t, resp).Error.Code)
		})
	}
}

func TestRoutes_ApplicantReadsOwnFarm(t *testing.T) {
	s := newSeededRoutes(t)
	applicant := s.app(asActor("applicant", "CLIENTE"))

	for _, path := range []string{
		"/documents/" + s.doc.ID,
		"/documents/" + s.doc.ID + "/download",
		"/farms/" + s.farmID + "/documents",
		"/farms/" + s.farmID + "/completeness",
		"/role-grants/" + s.grant.ID,
	} {
		resp, err := applicant.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, path)
	}

	resp, err := applicant.Test(httptest.NewRequest(http.MethodGet, "/documents/pending", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRoutes_RejectUntrustedTokens(t *testing.T) {
	s := newSeededRoutes(t)
	v, err := identity.NewVerifier(config.AuthConfig{HMACSecret: "server-key"}, zap.NewNop())
	require.NoError(t, err)
	app := s.app(middleware.Authenticate(v, zap.NewNop()))

	claims := jwt.MapClaims{"sub": "attacker", "roles": "ADMIN"}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("guessed-key"))
	require.NoError(t, err)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	valid, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-key"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{name: "forged signature", token: forged, status: fiber.StatusUnauthorized},
		{name: "unsigned", token: unsigned, status: fiber.StatusUnauthorized},
		{name: "signed by the server key", token: valid, status: fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/documents/pending", nil)
			req.Header.Set(fiber.HeaderAuthorization, "Bearer "+tt.token)

			resp, err := app.Test(req)

			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

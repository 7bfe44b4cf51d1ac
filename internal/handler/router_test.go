package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"rentease-service/internal/middleware"
	"rentease-service/internal/repository"
	"rentease-service/internal/service"
)

const secret = "handler-secret"

type testServer struct {
	router http.Handler
	admin  string
	owner  string
	tenant string
}

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	claims["exp"] = time.Now().Add(time.Hour).Unix()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore()
	props := repository.NewPropertyRepository(store)
	interests := repository.NewInterestRepository(store)
	settings := repository.NewSettingsRepository(store)
	users := repository.NewUserRepository(store)
	messages := repository.NewMessageRepository(store)

	svc := Services{
		Properties: service.NewPropertyService(props, repository.NewMemoryBlobStore("/api/files"), nil, nil),
		Interests:  service.NewInterestService(interests, props, settings, nil, nil, "desk@example.com"),
		Settings:   service.NewSettingsService(settings),
		Users:      service.NewUserService(users),
		Messages:   service.NewMessageService(messages, nil, "desk@example.com"),
		Reports:    service.NewReportService(props, interests, users),
	}
	return &testServer{
		router: NewRouter(svc, middleware.NewAuth(secret, users), nil),
		admin:  signed(t, jwt.MapClaims{"sub": "a1", "email": "admin@example.com", "role": "admin"}),
		owner:  signed(t, jwt.MapClaims{"sub": "o1", "email": "owner@example.com"}),
		tenant: signed(t, jwt.MapClaims{"sub": "t1", "email": "tenant@example.com", "name": "Asha"}),
	}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type listingJSON struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	PropertyType  string `json:"propertyType"`
	MonthlyRent   string `json:"monthlyRent"`
	City          string `json:"city"`
	Status        string `json:"status"`
	ContactNumber string `json:"contactNumber"`
	ImageURL      string `json:"imageUrl"`
	CanEdit       bool   `json:"canEdit"`
}

var quickForm = map[string]any{
	"name":          "Garden 2BHK",
	"type":          "apartment",
	"price":         "15000",
	"location":      "Pune, Maharashtra",
	"contactNumber": "9876543210",
	"bedrooms":      2,
}

// createApproved posts a listing as the owner and approves it as admin.
func (s *testServer) createApproved(t *testing.T) listingJSON {
	t.Helper()
	w := s.do(http.MethodPost, "/api/listings", s.owner, quickForm)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[listingJSON](t, w)

	w = s.do(http.MethodPut, "/api/admin/listings/"+created.ID+"/approve", s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[listingJSON](t, w)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestListingLifecycle(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/listings", s.owner, quickForm)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[listingJSON](t, w)
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, "apartment", created.PropertyType)
	assert.Equal(t, "15000", created.MonthlyRent)
	assert.Equal(t, "Pune", created.City)
	assert.True(t, created.CanEdit)
	assert.Empty(t, created.ContactNumber)

	w = s.do(http.MethodGet, "/api/listings/"+created.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "pending listings are hidden from the public")

	w = s.do(http.MethodGet, "/api/admin/listings/pending", s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	pending := decode[[]listingJSON](t, w)
	require.Len(t, pending, 1)
	assert.Equal(t, "9876543210", pending[0].ContactNumber)

	w = s.do(http.MethodPut, "/api/admin/listings/"+created.ID+"/approve", s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPut, "/api/admin/listings/"+created.ID+"/reject", s.admin, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodGet, "/api/listings?city=pune", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	public := decode[[]listingJSON](t, w)
	require.Len(t, public, 1)
	assert.Empty(t, public[0].ContactNumber)
	assert.False(t, public[0].CanEdit)

	w = s.do(http.MethodGet, "/api/listings?max_price=10000", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]listingJSON](t, w))

	// an owner's edit sends the listing back to review
	edit := map[string]any{"name": "Garden 2BHK", "propertyType": "apartment", "monthlyRent": 16000, "city": "Pune"}
	w = s.do(http.MethodPut, "/api/listings/"+created.ID, s.owner, edit)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "pending", decode[listingJSON](t, w).Status)

	w = s.do(http.MethodPut, "/api/listings/"+created.ID, s.tenant, edit)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/api/me/listings", s.owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]listingJSON](t, w), 1)

	w = s.do(http.MethodDelete, "/api/listings/"+created.ID, s.owner, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodGet, "/api/listings/"+created.ID, s.owner, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthAndValidationErrors(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/listings", "", quickForm)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/admin/listings/pending", s.owner, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/api/listings", s.owner, map[string]any{"name": "No city", "type": "flat"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[map[string]string](t, w)["error"], "city")

	w = s.do(http.MethodGet, "/api/admin/listings?status=archived", s.admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/listings", strings.NewReader("{not json"))
	req.Header.Set("Authorization", "Bearer "+s.owner)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInterestAndSettingsRoutes(t *testing.T) {
	s := newTestServer(t)
	listing := s.createApproved(t)

	w := s.do(http.MethodPut, "/api/admin/settings", s.admin, map[string]any{
		"upiAddress":   "rent@upi",
		"rentWiseFees": map[string]any{"1": "249"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/fees/tiers", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	tiers := decode[[]map[string]any](t, w)
	require.Len(t, tiers, 6)
	assert.Equal(t, "249", tiers[1]["fee"])

	form := map[string]any{
		"contactNumber": "9123456780",
		"religion":      "any",
		"occupation":    "engineer",
		"maritalStatus": "Single",
		"agreeToFee":    true,
	}
	w = s.do(http.MethodPost, "/api/listings/"+listing.ID+"/interests", s.tenant, form)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	interest := decode[map[string]any](t, w)
	assert.Equal(t, "249", interest["paymentAmount"])
	assert.Equal(t, "pending", interest["paymentStatus"])

	delete(form, "agreeToFee")
	w = s.do(http.MethodPost, "/api/listings/"+listing.ID+"/interests", s.tenant, form)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/me/listings/interests", s.owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	forOwner := decode[[]map[string]any](t, w)
	require.Len(t, forOwner, 1)
	assert.Empty(t, forOwner[0]["contactNumber"])

	w = s.do(http.MethodPost, "/api/interests/"+interest["id"].(string)+"/payment", s.tenant, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "rent@upi", decode[map[string]any](t, w)["upiAddress"])

	w = s.do(http.MethodPost, "/api/payments/webhook", "", map[string]any{"type": "payment_intent.succeeded"})
	assert.Equal(t, http.StatusForbidden, w.Code, "no payment gateway configured")
}

func TestInterestFormBinding(t *testing.T) {
	s := newTestServer(t)
	listing := s.createApproved(t)

	valid := func() map[string]any {
		return map[string]any{
			"contactNumber": "9123456780",
			"religion":      "any",
			"occupation":    "engineer",
			"maritalStatus": "Single",
			"agreeToFee":    true,
		}
	}
	cases := []struct {
		name   string
		mutate func(map[string]any)
		want   string
	}{
		{"short contact", func(f map[string]any) { f["contactNumber"] = "912345" }, "contactNumber must be exactly 10"},
		{"letters in contact", func(f map[string]any) { f["contactNumber"] = "91234567ab" }, "contactNumber must contain only digits"},
		{"missing contact", func(f map[string]any) { delete(f, "contactNumber") }, "contactNumber is required"},
		{"missing religion", func(f map[string]any) { delete(f, "religion") }, "religion is required"},
		{"missing occupation", func(f map[string]any) { f["occupation"] = "" }, "occupation is required"},
		{"missing marital status", func(f map[string]any) { delete(f, "maritalStatus") }, "maritalStatus is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			form := valid()
			tc.mutate(form)
			w := s.do(http.MethodPost, "/api/listings/"+listing.ID+"/interests", s.tenant, form)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Contains(t, decode[map[string]string](t, w)["error"], tc.want)
		})
	}

	w := s.do(http.MethodGet, "/api/me/interests", s.tenant, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, decode[[]map[string]any](t, w), "rejected forms are not stored")
}

func TestContactFormBinding(t *testing.T) {
	s := newTestServer(t)

	for _, email := range []string{"@", "not an email@", "a@@b", ""} {
		w := s.do(http.MethodPost, "/api/messages", "", map[string]any{
			"name": "Ravi", "email": email, "message": "Call me",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code, "email %q", email)
		assert.Contains(t, decode[map[string]string](t, w)["error"], "email", "email %q", email)
	}

	w := s.do(http.MethodPost, "/api/messages", "", map[string]any{"name": "Ravi", "email": "ravi@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "message is required", decode[map[string]string](t, w)["error"])

	req := httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid payload", decode[map[string]string](t, rec)["error"])

	w = s.do(http.MethodGet, "/api/admin/messages", s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]map[string]any](t, w))
}

func TestSettingsRejectsMalformedFees(t *testing.T) {
	s := newTestServer(t)

	bodies := map[string]map[string]any{
		"non-integer tier": {"rentWiseFees": map[string]any{"x": "100"}},
		"unparsable fee":   {"rentWiseFees": map[string]any{"1": "abc"}},
		"bad flat fee":     {"interestFee": "ten"},
		"fees not object":  {"rentWiseFees": "100"},
	}
	for name, body := range bodies {
		w := s.do(http.MethodPut, "/api/admin/settings", s.admin, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, name)
	}

	w := s.do(http.MethodGet, "/api/admin/settings", s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[map[string]any](t, w)["rentWiseFees"], "nothing was saved")
}

func TestContactAndUserRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/messages", "", map[string]any{
		"name": "Ravi", "email": "ravi@example.com", "subject": "Hi", "message": "Call me",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = s.do(http.MethodGet, "/api/admin/messages", s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	w = s.do(http.MethodPut, "/api/me/profile", s.tenant, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(http.MethodPut, "/api/admin/users/t1/role", s.admin, map[string]any{"role": "admin"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(http.MethodGet, "/api/admin/users?role=admin", s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	w = s.do(http.MethodDelete, "/api/admin/users/a1", s.admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "admins cannot delete themselves")
}

func TestPromotedUserPassesAdminRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPut, "/api/me/profile", s.tenant, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(http.MethodGet, "/api/admin/messages", s.tenant, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPut, "/api/admin/users/t1/role", s.admin, map[string]any{"role": "admin"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(http.MethodGet, "/api/admin/messages", s.tenant, nil)
	assert.Equal(t, http.StatusOK, w.Code, "the stored role grants admin")

	// a later profile sync must not undo the promotion
	w = s.do(http.MethodPut, "/api/me/profile", s.tenant, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", decode[map[string]any](t, w)["role"])
	w = s.do(http.MethodGet, "/api/admin/messages", s.tenant, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPut, "/api/admin/users/t1/role", s.admin, map[string]any{"role": "user"})
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodGet, "/api/admin/messages", s.tenant, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestReportDownload(t *testing.T) {
	s := newTestServer(t)
	s.createApproved(t)

	w := s.do(http.MethodGet, "/api/admin/reports/properties?fields=id,name&format=json", s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	table := decode[struct {
		Fields []string `json:"fields"`
		Rows   [][]any  `json:"rows"`
	}](t, w)
	assert.Equal(t, []string{"id", "name"}, table.Fields)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Garden 2BHK", table.Rows[0][1])

	w = s.do(http.MethodGet, "/api/admin/reports/properties", s.admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	rows, err := f.GetRows("Data")
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	w = s.do(http.MethodGet, "/api/admin/reports/unknown", s.admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(http.MethodGet, "/api/admin/reports/properties?fields=nope", s.admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(http.MethodGet, "/api/admin/reports/properties?start=2024-02-10&end=2024-02-01", s.admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImageUploadAndDownload(t *testing.T) {
	s := newTestServer(t)
	listing := s.createApproved(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "front.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("png-bytes"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/listings/"+listing.ID+"/image", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.owner)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	url := decode[map[string]string](t, w)["imageUrl"]
	require.True(t, strings.HasPrefix(url, "/api/files/"), url)

	w = s.do(http.MethodGet, url, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png-bytes", w.Body.String())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, `inline; filename="listing_`+listing.ID+`_front.png"`, w.Header().Get("Content-Disposition"))

	w = s.do(http.MethodGet, "/api/files/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORSConfig(t *testing.T) {
	assert.True(t, corsConfig(nil).AllowAllOrigins)
	assert.True(t, corsConfig([]string{"*"}).AllowAllOrigins)

	cfg := corsConfig([]string{"https://rentease.in"})
	assert.False(t, cfg.AllowAllOrigins)
	assert.Equal(t, []string{"https://rentease.in"}, cfg.AllowOrigins)
}

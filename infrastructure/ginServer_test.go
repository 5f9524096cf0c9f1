package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "rollcall.io/application/appErrors"
	"rollcall.io/application/controller"
	"rollcall.io/application/services/catalog"
	"rollcall.io/application/services/ledger"
	attendance_usecases "rollcall.io/application/usecases/attendance"
	auth_usecases "rollcall.io/application/usecases/auth"
	identity_usecases "rollcall.io/application/usecases/identity"
	liveness_usecases "rollcall.io/application/usecases/liveness"
	"rollcall.io/entities"
	"rollcall.io/infrastructure/auth"
	"rollcall.io/infrastructure/biometric/types"
	"rollcall.io/infrastructure/cryptography"
	"rollcall.io/infrastructure/env"
)

type stubFaces struct {
	embedding []float32
	verdict   types.SpoofVerdict
	healthErr error
}

func (s *stubFaces) Embed(ctx context.Context, data []byte) ([]float32, error) {
	return s.embedding, nil
}

func (s *stubFaces) CheckSpoof(ctx context.Context, data []byte) (types.SpoofVerdict, error) {
	return s.verdict, nil
}

func (s *stubFaces) Frame(ctx context.Context, data []byte, capturedAt time.Time) (types.Frame, error) {
	return types.Frame{CapturedAt: capturedAt}, nil
}

func (s *stubFaces) Healthy(ctx context.Context) error {
	return s.healthErr
}

type memoryChallenges struct {
	mu    sync.Mutex
	seeds map[string]int64
}

func (m *memoryChallenges) Save(ctx context.Context, id string, seed int64, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seeds == nil {
		m.seeds = map[string]int64{}
	}
	m.seeds[id] = seed
	return nil
}

func (m *memoryChallenges) Take(ctx context.Context, id string) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seed, ok := m.seeds[id]
	delete(m.seeds, id)
	return seed, ok, nil
}

type memoryOperators struct {
	mu        sync.Mutex
	operators map[string]entities.Operator
}

func (m *memoryOperators) Create(ctx context.Context, operator entities.Operator) (*entities.Operator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.operators == nil {
		m.operators = map[string]entities.Operator{}
	}
	if _, ok := m.operators[operator.Email]; ok {
		return nil, apperrors.ErrAlreadyExists
	}
	parsed := operator.ParseModel().(*entities.Operator)
	m.operators[operator.Email] = *parsed
	return parsed, nil
}

func (m *memoryOperators) FindByEmail(ctx context.Context, email string) (*entities.Operator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	operator, ok := m.operators[email]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &operator, nil
}

func (m *memoryOperators) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.operators)), nil
}

type fixedCounts struct{}

func (fixedCounts) Count(ctx context.Context, date string, courseID string) (int64, error) {
	return 3, nil
}

type response struct {
	Message      string          `json:"message"`
	Body         json.RawMessage `json:"body"`
	ResponseCode *uint           `json:"response_code"`
	Errors       []string        `json:"errors"`
}

type harness struct {
	t      *testing.T
	router *gin.Engine
	faces  *stubFaces
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	faces := &stubFaces{
		embedding: []float32{1, 0},
		verdict:   types.SpoofVerdict{Overall: types.SpoofLabelReal, Counts: types.SpoofCounts{Real: 1}},
	}
	identities := catalog.New(catalog.NewMemoryStore(), nil, 2, time.Minute)
	clock := func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }
	attendance := &attendance_usecases.AttendanceUseCase{
		Faces:             faces,
		Catalog:           identities,
		Ledger:            ledger.New(ledger.NewMemoryStore()),
		Location:          time.UTC,
		RequireSpoofCheck: true,
		Now:               clock,
	}
	tokens := &auth.TokenIssuer{SigningKey: []byte("test-key"), Issuer: "rollcall.io", TTL: time.Hour}
	c := &controller.Controller{
		Identity:   &identity_usecases.IdentityUseCase{Faces: faces, Catalog: identities, RequireSpoofCheck: true},
		Attendance: attendance,
		Liveness: &liveness_usecases.LivenessUseCase{
			Faces:      faces,
			Challenges: &memoryChallenges{},
			Attendance: attendance,
			TTL:        time.Minute,
		},
		Operators: &auth_usecases.OperatorUseCase{Store: &memoryOperators{}, Hasher: cryptography.CryptoHahser, Tokens: tokens},
		Counts:    fixedCounts{},
		Health:    faces,
		Version:   "test",
	}
	cfg := env.Config{Env: "test", RateLimit: 1000, FaceRateLimit: 1000}
	return &harness{t: t, router: NewRouter(cfg, c, tokens), faces: faces}
}

func (h *harness) do(req *http.Request, token string) (int, response) {
	h.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	var body response
	require.NoError(h.t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec.Code, body
}

func (h *harness) json(method string, path string, payload any, token string) (int, response) {
	h.t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(h.t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return h.do(req, token)
}

func (h *harness) multipart(path string, fields map[string]string, image []byte, token string) (int, response) {
	h.t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(h.t, writer.WriteField(key, value))
	}
	if image != nil {
		part, err := writer.CreateFormFile("image", "face.png")
		require.NoError(h.t, err)
		_, err = part.Write(image)
		require.NoError(h.t, err)
	}
	require.NoError(h.t, writer.Close())
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return h.do(req, token)
}

func (h *harness) login(email string) string {
	h.t.Helper()
	code, body := h.json(http.MethodPost, "/api/v1/auth/login", map[string]string{"email": email, "password": "password123"}, "")
	require.Equal(h.t, http.StatusOK, code)
	var payload struct {
		Token string `json:"token"`
	}
	require.NoError(h.t, json.Unmarshal(body.Body, &payload))
	return payload.Token
}

func pngImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		img.Set(x, x, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPingAndHealth(t *testing.T) {
	h := newHarness(t)

	code, body := h.do(httptest.NewRequest(http.MethodGet, "/ping", nil), "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "pong!", body.Message)

	code, body = h.do(httptest.NewRequest(http.MethodGet, "/healthz", nil), "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"version":"test","models":"ok"}`, string(body.Body))

	h.faces.healthErr = errors.New("down")
	code, body = h.do(httptest.NewRequest(http.MethodGet, "/healthz", nil), "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	require.NotNil(t, body.ResponseCode)
	assert.Equal(t, uint(5120), *body.ResponseCode)

	code, _ = h.do(httptest.NewRequest(http.MethodGet, "/nowhere", nil), "")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestOperatorBootstrapAndRoles(t *testing.T) {
	h := newHarness(t)
	register := func(email string, role string, token string) int {
		code, _ := h.json(http.MethodPost, "/api/v1/auth/register", map[string]string{
			"name": "Op", "email": email, "password": "password123", "role": role,
		}, token)
		return code
	}

	assert.Equal(t, http.StatusCreated, register("admin@example.com", "", ""))
	assert.Equal(t, http.StatusUnauthorized, register("clerk@example.com", "operator", ""))

	admin := h.login("admin@example.com")
	assert.Equal(t, http.StatusCreated, register("clerk@example.com", "operator", admin))
	clerk := h.login("clerk@example.com")
	assert.Equal(t, http.StatusForbidden, register("other@example.com", "operator", clerk))

	code, body := h.json(http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "admin@example.com", "password": "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Contains(t, string(body.Body), "unauthorised")

	code, body = h.json(http.MethodPost, "/api/v1/auth/register", map[string]string{"email": "bad"}, admin)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.NotEmpty(t, body.Errors)
}

func TestEnrollMarkAndReport(t *testing.T) {
	h := newHarness(t)
	h.json(http.MethodPost, "/api/v1/auth/register", map[string]string{"name": "Root", "email": "root@example.com", "password": "password123"}, "")
	token := h.login("root@example.com")
	img := pngImage(t)

	code, _ := h.multipart("/api/v1/identities", map[string]string{"name": "Ada", "id": "R01"}, img, "")
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body := h.multipart("/api/v1/identities", map[string]string{"name": " Ada  Lovelace ", "id": "R01"}, img, token)
	require.Equal(t, http.StatusCreated, code, body.Message)
	assert.Equal(t, uint(2200), *body.ResponseCode)
	assert.Contains(t, string(body.Body), `"id":"r01"`)

	code, body = h.multipart("/api/v1/identities", map[string]string{"name": "Ada", "id": "a.b"}, img, token)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, []string{"id may not be blank, contain '.' or start with '$'"}, body.Errors)

	code, body = h.multipart("/api/v1/attendance/mark", map[string]string{"courseId": "CS101"}, img, "")
	require.Equal(t, http.StatusCreated, code, body.Message)
	assert.Equal(t, uint(2100), *body.ResponseCode)

	code, body = h.multipart("/api/v1/attendance/mark", map[string]string{"courseId": "CS101"}, img, "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, uint(2110), *body.ResponseCode)
	assert.Contains(t, string(body.Body), `"status":"duplicate"`)

	code, body = h.multipart("/api/v1/attendance/mark", map[string]string{}, img, "")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, []string{"courseId is required"}, body.Errors)

	code, body = h.multipart("/api/v1/attendance/mark", map[string]string{"courseId": "CS101"}, nil, "")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, []string{"image is required"}, body.Errors)

	code, body = h.do(httptest.NewRequest(http.MethodGet, "/api/v1/attendance?date=2024-05-01&courseId=CS101", nil), token)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body.Body), `"r01"`)

	code, body = h.do(httptest.NewRequest(http.MethodGet, "/api/v1/attendance/stats?date=2024-05-01&courseId=CS101", nil), token)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body.Body), `"count":3`)

	code, body = h.do(httptest.NewRequest(http.MethodGet, "/api/v1/identities/R01", nil), token)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body.Body), `"imageType":"image/png"`)
	assert.NotContains(t, string(body.Body), "embedding")

	code, _ = h.do(httptest.NewRequest(http.MethodDelete, "/api/v1/identities/r01", nil), token)
	assert.Equal(t, http.StatusOK, code)
	code, _ = h.do(httptest.NewRequest(http.MethodGet, "/api/v1/identities/r01", nil), token)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestSpoofRejectedAtMark(t *testing.T) {
	h := newHarness(t)
	h.faces.verdict = types.SpoofVerdict{Overall: types.SpoofLabelSpoof, IsSpoof: true, Counts: types.SpoofCounts{Spoof: 1}}

	code, body := h.multipart("/api/v1/attendance/mark", map[string]string{"courseId": "CS101"}, pngImage(t), "")
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, uint(4130), *body.ResponseCode)

	code, body = h.multipart("/api/v1/liveness/check", nil, pngImage(t), "")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(body.Body), `"success":false`)
}

func TestChallengeIsSingleUse(t *testing.T) {
	h := newHarness(t)

	code, body := h.json(http.MethodPost, "/api/v1/liveness/challenge", nil, "")
	require.Equal(t, http.StatusCreated, code)
	var issued struct {
		ID           string   `json:"id"`
		Instructions []string `json:"instructions"`
	}
	require.NoError(t, json.Unmarshal(body.Body, &issued))
	require.NotEmpty(t, issued.ID)
	assert.Len(t, issued.Instructions, 4)

	frames := map[string]any{"frames": []map[string]any{
		{"capturedAt": time.Now().UTC().Format(time.RFC3339Nano), "landmarks": map[string]any{"points": []any{}}},
	}}
	code, body = h.json(http.MethodPost, "/api/v1/liveness/challenge/"+issued.ID+"/verify", frames, "")
	require.Equal(t, http.StatusOK, code, body.Message)
	assert.Equal(t, uint(4141), *body.ResponseCode)
	assert.True(t, strings.Contains(string(body.Body), `"reason":"incomplete"`))

	code, _ = h.json(http.MethodPost, "/api/v1/liveness/challenge/"+issued.ID+"/verify", frames, "")
	assert.Equal(t, http.StatusGone, code)
}

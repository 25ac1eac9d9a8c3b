package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"hash/fnv"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/applyease/internal/answers"
	"github.com/jonathan/applyease/internal/db"
	"github.com/jonathan/applyease/internal/rendering"
	"github.com/jonathan/applyease/internal/server/ratelimit"
	"github.com/jonathan/applyease/internal/similarity"
	"github.com/jonathan/applyease/internal/tailoring"
	"github.com/jonathan/applyease/internal/types"
)

// bagEmbedder hashes lower-cased words into buckets, so texts sharing words score higher.
type bagEmbedder struct {
	dim int
	err error
}

func (e *bagEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	v := make([]float32, e.dim)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		v[h.Sum32()%uint32(e.dim)]++
	}
	return v, nil
}

type stubGenerator struct {
	out   string
	err   error
	calls int
	mu    sync.Mutex
}

func (g *stubGenerator) Complete(_ context.Context, _ string) (string, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	return g.out, g.err
}

type memStore struct {
	mu       sync.Mutex
	resumes  map[string]*db.Resume
	tailored []db.TailoredResume
}

func newMemStore() *memStore {
	return &memStore{resumes: map[string]*db.Resume{}}
}

func (m *memStore) Ping(context.Context) error { return nil }

func (m *memStore) UpsertResume(_ context.Context, r *db.Resume) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.UpdatedAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	cp := *r
	m.resumes[r.UserID] = &cp
	return nil
}

func (m *memStore) GetResume(_ context.Context, userID string) (*db.Resume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.resumes[userID]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *memStore) SaveTailoredResume(_ context.Context, t *db.TailoredResume) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.HasPDF = len(t.PDF) > 0
	m.tailored = append(m.tailored, *t)
	return nil
}

func (m *memStore) ListTailoredResumes(_ context.Context, userID string, limit int) ([]db.TailoredResume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []db.TailoredResume
	for _, t := range m.tailored {
		if t.UserID == userID && len(out) < limit {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStore) GetTailoredResume(_ context.Context, userID string, id uuid.UUID) (*db.TailoredResume, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tailored {
		if t.ID == id && t.UserID == userID {
			cp := t
			return &cp, nil
		}
	}
	return nil, nil
}

const testResume = "Backend engineer with Python and PostgreSQL experience building APIs."

type fixture struct {
	handler http.Handler
	store   *memStore
	gen     *stubGenerator
	token   string
}

func newFixture(t *testing.T, gen *stubGenerator) *fixture {
	t.Helper()
	jwtSvc := testJWTService()
	token, err := jwtSvc.GenerateToken("user-1", "dev@example.com")
	require.NoError(t, err)

	store := newMemStore()
	deps := Deps{
		Store:    store,
		Scorer:   similarity.NewScorer(&bagEmbedder{dim: similarity.Dimension}, similarity.Dimension),
		Tailorer: tailoring.New(gen, tailoring.DefaultOptions(), nil),
		Answers:  answers.NewComposer(gen, 0, nil),
		Auth:     jwtSvc,
		Limiter:  ratelimit.NewLimiter(&ratelimit.Config{Enabled: false}),
	}
	srv := New(deps, Options{Geometry: rendering.DefaultGeometry(), MaxConcurrentGenerations: 2})
	return &fixture{handler: srv.Handler(), store: store, gen: gen, token: token}
}

func (f *fixture) do(t *testing.T, method, path string, body any, auth bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) putResume(t *testing.T) {
	t.Helper()
	rec := f.do(t, http.MethodPut, "/resume", types.UpsertResumeRequest{ResumeText: testResume}, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestHealth(t *testing.T) {
	f := newFixture(t, &stubGenerator{})
	rec := f.do(t, http.MethodGet, "/health", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestSimilarity(t *testing.T) {
	f := newFixture(t, &stubGenerator{})

	rec := f.do(t, http.MethodPost, "/similarity", types.SimilarityRequest{
		ResumeText:     testResume,
		JobDescription: "We need Python, Kubernetes and PostgreSQL skills.",
	}, false)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp types.MatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Greater(t, resp.Score, 0.0)
	assert.InDelta(t, similarity.Percent(resp.Score), resp.Percent, 1e-9)
	assert.Contains(t, resp.MatchingWords, "python")
	assert.Contains(t, resp.MatchingWords, "postgresql")
	assert.Contains(t, resp.MissingWords, "kubernetes")
}

func TestSimilarity_Validation(t *testing.T) {
	f := newFixture(t, &stubGenerator{})

	rec := f.do(t, http.MethodPost, "/similarity", map[string]string{"resume_text": "x"}, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp types.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "validation failed", resp.Error)
	assert.Equal(t, "required", resp.Details["JobDescription"])
}

func TestSimilarity_WrongDimension(t *testing.T) {
	srv := New(Deps{
		Scorer: similarity.NewScorer(&bagEmbedder{dim: 3}, similarity.Dimension),
		Auth:   testJWTService(),
	}, Options{})

	req := httptest.NewRequest(http.MethodPost, "/similarity",
		strings.NewReader(`{"resume_text":"go","job_description":"go"}`))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal error")
}

func TestClassify(t *testing.T) {
	f := newFixture(t, &stubGenerator{})
	rec := f.do(t, http.MethodPost, "/classify", types.ClassifyRequest{Text: "Python and Docker, plus great communication"}, false)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.ClassifyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"docker", "python"}, resp.Keywords)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	f := newFixture(t, &stubGenerator{})
	for _, route := range []struct{ method, path string }{
		{http.MethodPut, "/resume"},
		{http.MethodGet, "/resume"},
		{http.MethodPost, "/match"},
		{http.MethodPost, "/tailored_resume"},
		{http.MethodGet, "/tailored_resumes"},
		{http.MethodPost, "/custom-answer"},
	} {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			rec := f.do(t, route.method, route.path, nil, false)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestUpsertAndGetResume(t *testing.T) {
	f := newFixture(t, &stubGenerator{})
	rec := f.do(t, http.MethodPut, "/resume", types.UpsertResumeRequest{ResumeText: testResume}, true)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.UpsertResumeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, "user-1", resp.UserID)
	assert.Contains(t, resp.Keywords, "postgresql")

	stored, err := f.store.GetResume(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, stored.Embedding, similarity.Dimension)
	assert.InDelta(t, 1.0, similarity.Norm(stored.Embedding), 1e-5)

	rec = f.do(t, http.MethodGet, "/resume", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Backend engineer")
}

func TestGetResume_NotFound(t *testing.T) {
	f := newFixture(t, &stubGenerator{})
	rec := f.do(t, http.MethodGet, "/resume", nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMatch_UsesStoredVector(t *testing.T) {
	f := newFixture(t, &stubGenerator{})
	f.putResume(t)
	jd := "Python engineer, PostgreSQL, Kafka"

	rec := f.do(t, http.MethodPost, "/match", types.MatchRequest{JobDescription: jd}, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp types.MatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	scorer := similarity.NewScorer(&bagEmbedder{dim: similarity.Dimension}, similarity.Dimension)
	want, err := scorer.Score(context.Background(), testResume, jd)
	require.NoError(t, err)
	assert.InDelta(t, want, resp.Score, 1e-5)
	assert.Contains(t, resp.MissingWords, "kafka")
}

func TestMatch_StaleVectorIsReembedded(t *testing.T) {
	f := newFixture(t, &stubGenerator{})
	require.NoError(t, f.store.UpsertResume(context.Background(), &db.Resume{
		UserID: "user-1", Text: testResume, Embedding: []float32{1, 0, 0},
	}))
	rec := f.do(t, http.MethodPost, "/match", types.MatchRequest{JobDescription: "Go"}, true)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestTailor_GeneratedAndSaved(t *testing.T) {
	f := newFixture(t, &stubGenerator{out: "```\nTailored résumé with Kafka\n```"})
	f.putResume(t)

	rec := f.do(t, http.MethodPost, "/tailored_resume", types.TailorRequest{
		JobDescription: "Python, Kafka and PostgreSQL",
		Save:           true,
		IncludePDF:     true,
	}, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp types.TailorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Generated)
	assert.Equal(t, "Tailored résumé with Kafka", resp.ResumeText)
	assert.Equal(t, []string{"kafka"}, resp.Missing)
	require.NotNil(t, resp.ID)

	rec = f.do(t, http.MethodGet, "/tailored_resumes", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), resp.ID.String())
	assert.Contains(t, rec.Body.String(), `"has_pdf":true`)

	rec = f.do(t, http.MethodGet, "/tailored_resumes/"+resp.ID.String()+"/pdf", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestTailor_FallbackWhenGeneratorFails(t *testing.T) {
	f := newFixture(t, &stubGenerator{err: errors.New("model offline")})
	f.putResume(t)

	rec := f.do(t, http.MethodPost, "/tailored_resume", types.TailorRequest{JobDescription: "Kafka and Python"}, true)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.TailorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Generated)
	assert.Nil(t, resp.ID)
	assert.Equal(t, testResume+tailoring.SkillsHighlightPrefix+"kafka", resp.ResumeText)
}

func TestTailoredPDF_NotFoundAndBadID(t *testing.T) {
	f := newFixture(t, &stubGenerator{})
	rec := f.do(t, http.MethodGet, "/tailored_resumes/"+uuid.NewString()+"/pdf", nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/tailored_resumes/not-a-uuid/pdf", nil, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListTailored_BadLimit(t *testing.T) {
	f := newFixture(t, &stubGenerator{})
	rec := f.do(t, http.MethodGet, "/tailored_resumes?limit=0", nil, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRenderPDF(t *testing.T) {
	f := newFixture(t, &stubGenerator{})
	rec := f.do(t, http.MethodPost, "/render_pdf", types.RenderRequest{Text: "Hello\nWorld", Filename: "cv"}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="cv.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestCustomAnswer(t *testing.T) {
	tests := []struct {
		name       string
		gen        *stubGenerator
		wantStatus int
		wantAnswer string
	}{
		{name: "answered", gen: &stubGenerator{out: "I built APIs in Go."}, wantStatus: http.StatusOK, wantAnswer: "I built APIs in Go."},
		{name: "empty output", gen: &stubGenerator{out: "  "}, wantStatus: http.StatusBadGateway},
		{name: "generator error", gen: &stubGenerator{err: errors.New("boom")}, wantStatus: http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.gen)
			f.putResume(t)
			rec := f.do(t, http.MethodPost, "/custom-answer", types.CustomAnswerRequest{
				JobDescription:      "Go role",
				ApplicationQuestion: "Why us?",
			}, true)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantAnswer != "" {
				var resp types.CustomAnswerResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, tt.wantAnswer, resp.Answer)
			}
		})
	}
}

func TestNoStore(t *testing.T) {
	jwtSvc := testJWTService()
	token, err := jwtSvc.GenerateToken("user-1", "")
	require.NoError(t, err)
	srv := New(Deps{Auth: jwtSvc}, Options{})

	req := httptest.NewRequest(http.MethodGet, "/resume", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRateLimit(t *testing.T) {
	srv := New(Deps{
		Auth: testJWTService(),
		Limiter: ratelimit.NewLimiter(&ratelimit.Config{
			Enabled:       true,
			DefaultLimit:  1,
			DefaultWindow: time.Hour,
		}),
	}, Options{})

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/classify", strings.NewReader(`{"text":"go"}`))
		req.RemoteAddr = "192.0.2.10:4321"
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		return rec
	}
	assert.Equal(t, http.StatusOK, send().Code)
	rec := send()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestCORSPreflight(t *testing.T) {
	srv := New(Deps{Auth: testJWTService()}, Options{AllowedOrigins: []string{"https://app.example.com"}})

	req := httptest.NewRequest(http.MethodOptions, "/match", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestGenerate_WaitsForContext(t *testing.T) {
	srv := New(Deps{}, Options{MaxConcurrentGenerations: 1})
	require.True(t, srv.generation.TryAcquire(1))
	defer srv.generation.Release(1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := srv.generate(ctx, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, http.StatusGatewayTimeout, HTTPStatus(err))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{ErrNoStore, http.StatusServiceUnavailable},
		{ErrNotFound, http.StatusNotFound},
		{answers.ErrEmptyQuestion, http.StatusBadRequest},
		{errors.Join(answers.ErrNoAnswer, errors.New("x")), http.StatusBadGateway},
		{&similarity.DimensionError{Want: 384, Got: 3}, http.StatusInternalServerError},
		{errors.New("unknown"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), "%v", tt.err)
	}
}

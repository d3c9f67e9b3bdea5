package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/james-see/modalkit/pkg/audio"
	"github.com/james-see/modalkit/pkg/explorer"
	"github.com/james-see/modalkit/pkg/export"
	"github.com/james-see/modalkit/pkg/throttle"
)

type nopSink struct{}

func (nopSink) Start()       {}
func (nopSink) Close() error { return nil }

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestServer(t *testing.T) (*Server, *fakeClock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	clock := &fakeClock{t: time.Unix(1000, 0)}
	provider := audio.NewProvider(audio.WithSampleRate(1000), audio.WithSink(func(io.Reader, int) (audio.Sink, error) {
		return nopSink{}, nil
	}))
	x := explorer.New(provider, explorer.WithLimiter(throttle.New(0, throttle.WithClock(clock.now))))
	return NewServer(x), clock
}

func do(s *Server, method, target string, body []byte) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	for _, path := range []string{"/health", "/api/v1/health"} {
		w := do(s, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Body.String(), "healthy")
	}
}

func TestListModes(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(s, http.MethodGet, "/api/v1/modes?root=D&kind=triads", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ModesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "D", resp.Root)
	assert.Equal(t, "triads", resp.Kind)
	assert.Len(t, resp.Rows, 7)
	assert.Equal(t, []string{"Ionian", "D", "Em", "F#m", "G", "A", "Bm", "C#dim"}, resp.Rows[0])
	assert.Equal(t, "Locrian", resp.Rows[6][0])
}

func TestListModesDefaults(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(s, http.MethodGet, "/api/v1/modes", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ModesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "C", resp.Root)
	assert.Equal(t, "notes", resp.Kind)
	assert.Equal(t, []string{"Dorian", "C", "D", "Eb", "F", "G", "A", "Bb"}, resp.Rows[1])
}

func TestListModesBadInput(t *testing.T) {
	s, _ := newTestServer(t)
	assert.Equal(t, http.StatusBadRequest, do(s, http.MethodGet, "/api/v1/modes?root=X", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(s, http.MethodGet, "/api/v1/modes?kind=ninths", nil).Code)
}

func TestListRoots(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(s, http.MethodGet, "/api/v1/roots?root=D", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Root  string   `json:"root"`
		Roots []string `json:"roots"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Roots, 12)
	assert.Equal(t, "D", resp.Roots[0])
	assert.Equal(t, "Eb", resp.Roots[1])
}

func TestListChordTypes(t *testing.T) {
	s, _ := newTestServer(t)
	w := do(s, http.MethodGet, "/api/v1/chord-types", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"minor seventh"`)
}

func TestGetChord(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(s, http.MethodGet, "/api/v1/chords/C?root=D", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ChordResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "major", resp.Type)
	assert.Equal(t, 1, resp.OctaveOffset)
	assert.Equal(t, 4, resp.Octave)
	assert.Equal(t, []string{"C4", "E4", "G4"}, resp.Notes)
	assert.Equal(t, []string{"1P", "3M", "5P"}, resp.Intervals)
	assert.InDelta(t, 261.63, resp.Frequencies[0], 0.01)
}

func TestGetChordSharp(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(s, http.MethodGet, "/api/v1/chords/F%23m7", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ChordResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"F#", "A", "C#", "E"}, resp.PitchClasses)
}

func TestGetChordNotFound(t *testing.T) {
	s, _ := newTestServer(t)
	assert.Equal(t, http.StatusNotFound, do(s, http.MethodGet, "/api/v1/chords/Lydian", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(s, http.MethodGet, "/api/v1/chords/Cxyz", nil).Code)
}

func TestGetChordMIDI(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(s, http.MethodGet, "/api/v1/chords/Dm7/midi", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "audio/midi", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "Dm7.mid")

	chords, _, err := export.Parse(w.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, chords, 1)
	assert.Equal(t, []uint8{50, 53, 57, 60}, chords[0].Keys)
}

func TestPlay(t *testing.T) {
	s, clock := newTestServer(t)

	w := do(s, http.MethodPost, "/api/v1/play", []byte(`{"root":"C","cell":"Dm7"}`))
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp PlayResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, 4, resp.Voices)
	assert.Equal(t, int64(500), resp.DurationMs)
	assert.Equal(t, []string{"D3", "F3", "A3", "C4"}, resp.Notes)

	// inside the window
	clock.t = clock.t.Add(100 * time.Millisecond)
	w = do(s, http.MethodPost, "/api/v1/play", []byte(`{"root":"C","cell":"G"}`))
	assert.Equal(t, http.StatusNoContent, w.Code)

	clock.t = clock.t.Add(500 * time.Millisecond)
	w = do(s, http.MethodPost, "/api/v1/play", []byte(`{"cell":"G"}`))
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestPlayIgnoredAndInvalid(t *testing.T) {
	s, _ := newTestServer(t)

	assert.Equal(t, http.StatusNoContent, do(s, http.MethodPost, "/api/v1/play", []byte(`{"root":"C","cell":"Lydian"}`)).Code)
	assert.Equal(t, http.StatusBadRequest, do(s, http.MethodPost, "/api/v1/play", []byte(`{"root":"C"}`)).Code)
	assert.Equal(t, http.StatusBadRequest, do(s, http.MethodPost, "/api/v1/play", []byte(`{"root":"Q","cell":"C"}`)).Code)
	assert.Equal(t, http.StatusBadRequest, do(s, http.MethodPost, "/api/v1/play", []byte(`not json`)).Code)
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/play", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

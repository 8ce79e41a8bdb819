package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRemote simulates a QPU endpoint: the first GET on a job returns
// 300 (not ready), the second returns 200 with one sample per requested
// shot.
type fakeRemote struct {
	jobCounter   int32
	samplesPerID map[int][]int // job id -> bit values (1 qubit per sample for simplicity)
	notReadyOnce map[int]bool
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{samplesPerID: map[int][]int{}, notReadyOnce: map[int]bool{}}
}

func (f *fakeRemote) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost:
			var env Envelope
			require.NoError(t, json.NewDecoder(r.Body).Decode(&env))
			id := int(atomic.AddInt32(&f.jobCounter, 1))
			samples := make([]int, env.Settings.Shots)
			for i := range samples {
				samples[i] = i % 2
			}
			f.samplesPerID[id] = samples
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(postResponse{ID: id})
		case r.Method == http.MethodGet:
			id := idFromPath(r.URL.Path)
			if !f.notReadyOnce[id] {
				f.notReadyOnce[id] = true
				w.WriteHeader(300)
				return
			}
			data := make([][]int, 0)
			for _, bit := range f.samplesPerID[id] {
				data = append(data, []int{bit})
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(getResponse{Data: data})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

func idFromPath(p string) int {
	n := 0
	for i := len(p) - 1; i >= 0 && p[i] >= '0' && p[i] <= '9'; i-- {
		digit := int(p[i] - '0')
		mult := 1
		for j := 0; j < len(p)-1-i; j++ {
			mult *= 10
		}
		n += digit * mult
	}
	return n
}

func TestRunReachesExactRequestedShotCount(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	fr := newFakeRemote()
	srv := httptest.NewServer(fr.handler(t))
	defer srv.Close()

	client := NewClient(Options{
		Endpoint:          srv.URL,
		PostPath:          "/circuit",
		OverRequestFactor: 1,
		SafeShotLimit:     10000,
		RetriesPost:       2,
		RetriesGet:        2,
		PollingIntervalS:  0.01,
		PollingAttempts:   5,
	})

	res, err := client.Run(context.Background(), []string{"H q[0];"}, [][2]int{{0, 0}}, []int{0}, 16)
	require.NoError(err)
	assert.Equal(Succeeded, res.State)
	assert.Equal(16, res.AccumulatedValid)

	total := 0
	for _, n := range res.Counts {
		total += n
	}
	assert.Equal(16, total)
}

func TestRunZeroShotsReturnsImmediately(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	client := NewClient(Options{Endpoint: "http://unused.invalid"})
	res, err := client.Run(context.Background(), nil, nil, nil, 0)
	require.NoError(err)
	assert.Equal(Succeeded, res.State)
	assert.Equal(0, res.AccumulatedValid)
}

func TestRunRecursiveTopUpOnDeficit(t *testing.T) {
	require := require.New(t)
	assert := assert.New(t)

	// Each job only ever returns 60% of what was requested, forcing a
	// recursive follow-up request; recursive_request=true must
	// eventually reach the exact requested shot count.
	calls := 0
	shotsForID := map[int]int{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost:
			var env Envelope
			require.NoError(json.NewDecoder(r.Body).Decode(&env))
			calls++
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(postResponse{ID: calls})
			shotsForID[calls] = env.Settings.Shots
		case r.Method == http.MethodGet:
			id := idFromPath(r.URL.Path)
			shots := shotsForID[id]
			got := (shots * 3) / 5
			data := make([][]int, got)
			for i := range data {
				data[i] = []int{i % 2}
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(getResponse{Data: data})
		}
	}))
	defer srv.Close()

	client := NewClient(Options{
		Endpoint:          srv.URL,
		PostPath:          "/circuit",
		OverRequestFactor: 1,
		SafeShotLimit:     10000,
		RecursiveRequest:  true,
		RetriesPost:       2,
		RetriesGet:        2,
		PollingIntervalS:  0.01,
		PollingAttempts:   5,
	})

	res, err := client.Run(context.Background(), []string{"H q[0];"}, [][2]int{{0, 0}}, []int{0}, 100)
	require.NoError(err)
	assert.Equal(Succeeded, res.State)
	assert.Equal(100, res.AccumulatedValid)
}

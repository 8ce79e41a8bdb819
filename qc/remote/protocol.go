// Package remote implements the HTTP wire protocol and polling state
// machine for dispatching shots to a remote QPU: submit a circuit,
// poll for results, accumulate valid samples, and recursively top up
// a deficit until the requested shot count is reached or the job's
// retry budgets are exhausted.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/kegliz/qplay/internal/logger"
	"github.com/kegliz/qplay/qc/sdkerr"
)

// State is the polling state machine's current phase for one job.
type State int

const (
	Submitted State = iota
	Polling
	Accumulating
	Recursive
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Submitted:
		return "Submitted"
	case Polling:
		return "Polling"
	case Accumulating:
		return "Accumulating"
	case Recursive:
		return "Recursive"
	case Succeeded:
		return "Succeeded"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Envelope is the request body of POST /circuit.
type Envelope struct {
	Command  string   `json:"command"`
	Settings Settings `json:"settings"`
	HWBackend string  `json:"hwbackend"`
	Init     []int    `json:"init"`
	Circuit  []string `json:"circuit"`
	Measure  [][2]int `json:"measure"`
}

// Settings is the envelope's "settings" object.
type Settings struct {
	Shots                     int                `json:"shots"`
	Cycles                    int                `json:"cycles"`
	Results                   string             `json:"results"`
	ReadoutContrastThreshold *ContrastThreshold `json:"readout_contrast_threshold,omitempty"`
}

// ContrastThreshold is the optional calibration-gate setting.
type ContrastThreshold struct {
	Init   float64   `json:"init"`
	Qubits []float64 `json:"qubits"`
}

type postResponse struct {
	ID int `json:"id"`
}

type getResponse struct {
	Data [][]int `json:"data"`
}

// Options configures one job's protocol parameters (spec's per-cell
// remote RunConfig fields).
type Options struct {
	Endpoint             string
	PostPath             string
	HWBackend            string
	OverRequestFactor    float64
	SafeShotLimit        int
	RecursiveRequest     bool
	Resample             bool
	ResampleThresholdPct float64
	RetriesPost          int
	RetriesGet           int
	PollingIntervalS     float64
	PollingAttempts      int
	Seed                 *uint64
}

func (o Options) normalized() Options {
	if o.OverRequestFactor <= 0 {
		o.OverRequestFactor = 1
	}
	if o.SafeShotLimit <= 0 {
		o.SafeShotLimit = 1 << 20
	}
	if o.ResampleThresholdPct <= 0 {
		o.ResampleThresholdPct = 0.95
	}
	if o.PollingIntervalS <= 0 {
		o.PollingIntervalS = 1
	}
	if o.PollingAttempts <= 0 {
		o.PollingAttempts = 30
	}
	return o
}

// Client dispatches jobs against one remote backend.
type Client struct {
	opts Options
	log  logger.Logger
	rng  *rand.Rand
}

// NewClient builds a Client for opts.
func NewClient(opts Options) *Client {
	opts = opts.normalized()
	c := &Client{
		opts: opts,
		log:  *logger.NewLogger(logger.LoggerOptions{Debug: false}),
	}
	seed := time.Now().UnixNano()
	if opts.Seed != nil {
		seed = int64(*opts.Seed)
	}
	c.rng = rand.New(rand.NewSource(seed))
	return c
}

// Result is the outcome of Run: the accumulated shot histogram, the
// terminal state reached, and (if Failed) the error.
type Result struct {
	Counts            map[string]int
	State             State
	AccumulatedValid  int
	RequestedShots    int
}

// Run executes the full submit/poll/accumulate/recursive-top-up cycle
// for requestedShots. circuitLines is the already-lowered XASM gate
// sequence; measures is the classical-bit order extracted from the
// original Measure instructions.
func (c *Client) Run(ctx context.Context, circuitLines []string, measures [][2]int, init []int, requestedShots int) (Result, error) {
	if requestedShots <= 0 {
		return Result{Counts: map[string]int{}, State: Succeeded}, nil
	}

	counts := make(map[string]int)
	accumulated := 0
	overRequest := c.opts.OverRequestFactor
	resample := c.opts.Resample
	state := Submitted

	for accumulated < requestedShots {
		select {
		case <-ctx.Done():
			return Result{Counts: counts, State: Failed, AccumulatedValid: accumulated, RequestedShots: requestedShots},
				sdkerr.New(sdkerr.Cancelled, ctx.Err(), "qc/remote")
		default:
		}

		deficit := requestedShots - accumulated
		toRequest := int(float64(deficit) * overRequest)
		if toRequest < deficit {
			toRequest = deficit
		}
		if toRequest > c.opts.SafeShotLimit {
			c.log.Logger.Warn().Int("requested", toRequest).Int("safe_shot_limit", c.opts.SafeShotLimit).
				Msg("remote job clamped to safe shot limit")
			toRequest = c.opts.SafeShotLimit
		}

		state = Submitted
		jobID, err := c.submit(ctx, circuitLines, measures, init, toRequest)
		if err != nil {
			return Result{Counts: counts, State: Failed, AccumulatedValid: accumulated, RequestedShots: requestedShots}, err
		}

		state = Polling
		samples, err := c.poll(ctx, jobID)
		if err != nil {
			return Result{Counts: counts, State: Failed, AccumulatedValid: accumulated, RequestedShots: requestedShots}, err
		}

		state = Accumulating
		added := c.accumulate(counts, samples, deficit, resample)
		accumulated += added

		if accumulated >= requestedShots {
			state = Succeeded
			break
		}

		if !c.opts.RecursiveRequest {
			state = Succeeded // partial result, not a failure (spec §4.5/§7)
			break
		}

		state = Recursive
		if float64(accumulated)/float64(requestedShots) >= c.opts.ResampleThresholdPct {
			resample = true
			overRequest *= 8
		}
	}

	return Result{Counts: counts, State: state, AccumulatedValid: accumulated, RequestedShots: requestedShots}, nil
}

func (c *Client) submit(ctx context.Context, circuitLines []string, measures [][2]int, init []int, shots int) (int, error) {
	env := Envelope{
		Command: "circuit",
		Settings: Settings{
			Shots:   shots,
			Cycles:  1,
			Results: "normal",
		},
		HWBackend: c.opts.HWBackend,
		Init:      init,
		Circuit:   circuitLines,
		Measure:   measures,
	}
	body, err := json.Marshal(env)
	if err != nil {
		return 0, sdkerr.New(sdkerr.RemoteFatal, err, "qc/remote")
	}

	client := retryablehttp.NewClient()
	client.RetryMax = c.opts.RetriesPost
	client.Logger = nil

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.opts.Endpoint+c.opts.PostPath, bytes.NewReader(body))
	if err != nil {
		return 0, sdkerr.New(sdkerr.RemoteFatal, err, "qc/remote")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, sdkerr.New(sdkerr.RemoteFatal, err, "qc/remote: POST retry budget exhausted")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return 0, sdkerr.Newf(sdkerr.RemoteFatal, "qc/remote", "remote POST returned %d after retry budget", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return 0, sdkerr.Newf(sdkerr.RemoteFatal, "qc/remote", "unexpected POST status %d", resp.StatusCode)
	}

	var pr postResponse
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, sdkerr.New(sdkerr.RemoteFatal, err, "qc/remote")
	}
	if err := json.Unmarshal(data, &pr); err != nil {
		return 0, sdkerr.New(sdkerr.RemoteFatal, err, "qc/remote: malformed POST response")
	}
	return pr.ID, nil
}

// poll issues GET on the job's poll URL every PollingIntervalS seconds,
// up to PollingAttempts times, treating HTTP 300/425 as "not ready".
func (c *Client) poll(ctx context.Context, jobID int) ([][]int, error) {
	pollURL := c.opts.Endpoint + c.opts.PostPath + "/" + strconv.Itoa(jobID)

	client := retryablehttp.NewClient()
	client.RetryMax = c.opts.RetriesGet
	client.Logger = nil
	// HTTP 300/425 must reach the caller for state-machine handling,
	// not be treated as a retryable transport error.
	client.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if err != nil {
			return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
		}
		if resp.StatusCode == 300 || resp.StatusCode == 425 {
			return false, nil
		}
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}

	for attempt := 0; attempt < c.opts.PollingAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, sdkerr.New(sdkerr.Cancelled, ctx.Err(), "qc/remote")
		default:
		}

		req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, pollURL, nil)
		if err != nil {
			return nil, sdkerr.New(sdkerr.RemoteFatal, err, "qc/remote")
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, sdkerr.New(sdkerr.RemoteFatal, err, "qc/remote: GET retry budget exhausted")
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			data, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return nil, sdkerr.New(sdkerr.RemoteFatal, err, "qc/remote")
			}
			var gr getResponse
			if err := json.Unmarshal(data, &gr); err != nil {
				return nil, sdkerr.New(sdkerr.RemoteFatal, err, "qc/remote: malformed GET response")
			}
			return gr.Data, nil
		case resp.StatusCode == 300 || resp.StatusCode == 425:
			resp.Body.Close()
			if err := sleepOrCancel(ctx, c.opts.PollingIntervalS); err != nil {
				return nil, err
			}
			continue
		case resp.StatusCode == http.StatusInternalServerError:
			resp.Body.Close()
			return nil, sdkerr.Newf(sdkerr.RemoteFatal, "qc/remote", "remote job failed (HTTP 500)")
		default:
			resp.Body.Close()
			return nil, sdkerr.Newf(sdkerr.RemoteTransient, "qc/remote", "unexpected poll status %d", resp.StatusCode)
		}
	}
	return nil, sdkerr.Newf(sdkerr.RemoteFatal, "qc/remote", "polling attempts (%d) exhausted without result", c.opts.PollingAttempts)
}

func sleepOrCancel(ctx context.Context, seconds float64) error {
	t := time.NewTimer(time.Duration(seconds * float64(time.Second)))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return sdkerr.New(sdkerr.Cancelled, ctx.Err(), "qc/remote")
	case <-t.C:
		return nil
	}
}

// accumulate inserts up to `need` bit samples from data into counts as
// bitstrings, returning how many were added. With resample enabled it
// draws `need` samples uniformly with replacement from data instead of
// consuming it in order, always filling the full deficit (as long as
// data is non-empty).
func (c *Client) accumulate(counts map[string]int, data [][]int, need int, resample bool) int {
	if len(data) == 0 || need <= 0 {
		return 0
	}
	toBitstring := func(bits []int) string {
		buf := make([]byte, len(bits))
		for i, b := range bits {
			if b != 0 {
				buf[i] = '1'
			} else {
				buf[i] = '0'
			}
		}
		return string(buf)
	}

	if !resample {
		n := len(data)
		if n > need {
			n = need
		}
		for i := 0; i < n; i++ {
			counts[toBitstring(data[i])]++
		}
		return n
	}

	for i := 0; i < need; i++ {
		idx := c.rng.Intn(len(data))
		counts[toBitstring(data[idx])]++
	}
	return need
}

package api

import (
	"context"
	"corp-bot/model"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(retries uint64) *Client {
	c := NewClient(time.Second, retries)
	c.RetryInterval = time.Millisecond
	return c
}

func rosterServer(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, "s3cret", r.Header.Get("REST-SECRET"))
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestRosterSync(t *testing.T) {
	ctx := context.Background()

	t.Run("no changes", func(t *testing.T) {
		srv, _ := rosterServer(t, http.StatusOK, `{"existing_members":[],"new_members":[],"left_members":[]}`)
		result := NewRosterClient(testClient(0), srv.URL, "s3cret").Sync(ctx)
		assert.Equal(t, model.ResultEmpty, result.Kind)
		assert.NoError(t, result.Err)
	})

	t.Run("changes", func(t *testing.T) {
		srv, _ := rosterServer(t, http.StatusOK, `{"existing_members":["A"],"new_members":["B","C"],"left_members":[]}`)
		result := NewRosterClient(testClient(0), srv.URL+"/", "s3cret").Sync(ctx)
		require.Equal(t, model.ResultOk, result.Kind)
		assert.Equal(t, []string{"Existing members added to roster: A\nAccepted applicants: B, C\nCharacters who left the corp: None"}, result.Messages)
	})

	t.Run("server error is retried then fails", func(t *testing.T) {
		srv, hits := rosterServer(t, http.StatusInternalServerError, "oops")
		result := NewRosterClient(testClient(2), srv.URL, "s3cret").Sync(ctx)
		require.Equal(t, model.ResultFailed, result.Kind)
		var statusErr *StatusError
		require.True(t, errors.As(result.Err, &statusErr))
		assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
		assert.Equal(t, int32(3), atomic.LoadInt32(hits))
	})

	t.Run("client error is not retried", func(t *testing.T) {
		srv, hits := rosterServer(t, http.StatusForbidden, "")
		result := NewRosterClient(testClient(3), srv.URL, "s3cret").Sync(ctx)
		require.Equal(t, model.ResultFailed, result.Kind)
		assert.Equal(t, int32(1), atomic.LoadInt32(hits))
	})

	t.Run("missing key", func(t *testing.T) {
		srv, _ := rosterServer(t, http.StatusOK, `{"existing_members":[],"new_members":[]}`)
		result := NewRosterClient(testClient(0), srv.URL, "s3cret").Sync(ctx)
		require.Equal(t, model.ResultFailed, result.Kind)
		assert.ErrorIs(t, result.Err, ErrMalformedResponse)
	})

	t.Run("not json", func(t *testing.T) {
		srv, _ := rosterServer(t, http.StatusOK, `<html>`)
		result := NewRosterClient(testClient(0), srv.URL, "s3cret").Sync(ctx)
		assert.ErrorIs(t, result.Err, ErrMalformedResponse)
	})
}

func TestRosterApps(t *testing.T) {
	ctx := context.Background()

	srv, _ := rosterServer(t, http.StatusOK, `["Jane Doe","John Roe"]`)
	result := NewRosterClient(testClient(0), srv.URL, "s3cret").Apps(ctx)
	require.Equal(t, model.ResultOk, result.Kind)
	assert.Equal(t, []string{"New applications: Jane Doe, John Roe"}, result.Messages)

	srv, _ = rosterServer(t, http.StatusOK, `[]`)
	result = NewRosterClient(testClient(0), srv.URL, "s3cret").Apps(ctx)
	assert.Equal(t, model.ResultEmpty, result.Kind)
}

func date(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestTenureStart(t *testing.T) {
	const corp = 98000001
	history := []CorporationHistoryEntry{
		{CorporationID: corp, RecordID: 5, StartDate: date("2023-03-01T10:00:00Z")},
		{CorporationID: 1000, RecordID: 1, StartDate: date("2020-01-01T00:00:00Z")},
		{CorporationID: corp, RecordID: 3, StartDate: date("2021-06-01T00:00:00Z")},
		{CorporationID: 2000, RecordID: 4, StartDate: date("2022-01-01T00:00:00Z")},
		{CorporationID: corp, RecordID: 2, StartDate: date("2021-01-01T00:00:00Z")},
	}

	start, ok := TenureStart(history, corp)
	require.True(t, ok)
	assert.Equal(t, date("2023-03-01T10:00:00Z"), start)

	start, ok = TenureStart(history[1:], corp)
	require.True(t, ok)
	assert.Equal(t, date("2021-01-01T00:00:00Z"), start)

	_, ok = TenureStart(history, 42)
	assert.False(t, ok)
}

func TestHasTenure(t *testing.T) {
	const corp = 98000001
	cutoff := date("2026-10-01T12:30:00Z")
	joined := func(s string) []CorporationHistoryEntry {
		return []CorporationHistoryEntry{{CorporationID: corp, RecordID: 1, StartDate: date(s)}}
	}

	assert.True(t, HasTenure(joined("2026-10-01T11:59:00Z"), corp, cutoff))
	assert.False(t, HasTenure(joined("2026-10-01T12:30:00Z"), corp, cutoff))
	assert.False(t, HasTenure(joined("2026-10-01T12:00:00Z"), corp, cutoff))
	assert.False(t, HasTenure(joined("2026-10-05T00:00:00Z"), corp, cutoff))
	assert.False(t, HasTenure(nil, corp, cutoff))

	rejoined := []CorporationHistoryEntry{
		{CorporationID: corp, RecordID: 1, StartDate: date("2024-10-01T00:00:00Z")},
		{CorporationID: 2000, RecordID: 2, StartDate: date("2025-10-01T00:00:00Z")},
		{CorporationID: corp, RecordID: 3, StartDate: date("2026-10-14T00:00:00Z")},
	}
	assert.True(t, HasTenure(rejoined, corp, cutoff))
	assert.False(t, HasTenure(rejoined, 3000, cutoff))
	assert.False(t, HasTenure(rejoined[1:], corp, cutoff))
}

func TestCorporationHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/characters/123/corporationhistory/", r.URL.Path)
		assert.Equal(t, "tranquility", r.URL.Query().Get("datasource"))
		fmt.Fprint(w, `[{"corporation_id":98000001,"record_id":7,"start_date":"2024-05-01T08:15:00Z"}]`)
	}))
	defer srv.Close()

	history, err := NewESIClient(testClient(0), srv.URL).CorporationHistory(context.Background(), 123)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, int64(7), history[0].RecordID)
	assert.Equal(t, date("2024-05-01T08:15:00Z"), history[0].StartDate)
}

func TestKillboard(t *testing.T) {
	since := date("2026-10-01T12:30:00Z")
	assert.Equal(t, "202610011200", TimeKey(since))

	var body atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Maintainer: someone@example.com", r.Header.Get("User-Agent"))
		fmt.Fprint(w, body.Load().(string))
	}))
	defer srv.Close()

	kb := NewKillboardClient(testClient(0), srv.URL, "someone@example.com")
	assert.Equal(t, srv.URL+"/characterID/1,2/startTime/202610011200/limit/1/", kb.KillsSinceURL([]int64{1, 2}, since))

	ctx := context.Background()
	body.Store(`[]`)
	active, err := kb.HasKillsSince(ctx, []int64{1, 2}, since)
	require.NoError(t, err)
	assert.False(t, active)

	kill, err := kb.LatestKill(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, kill)

	body.Store(`[{"killmail_id":55,"killmail_time":"2026-10-02T10:00:00Z"}]`)
	active, err = kb.HasKillsSince(ctx, []int64{1, 2}, since)
	require.NoError(t, err)
	assert.True(t, active)

	kill, err = kb.LatestKill(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, kill)
	assert.Equal(t, int64(55), kill.KillmailID)

	_, err = kb.HasKillsSince(ctx, nil, since)
	assert.Error(t, err)
}

func TestPasteUpload(t *testing.T) {
	assert.Nil(t, NewPasteClient(testClient(0), "", ""))

	var reply atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "key", r.PostForm.Get("api_dev_key"))
		assert.Equal(t, "1D", r.PostForm.Get("api_paste_expire_date"))
		assert.Equal(t, "A\nB", r.PostForm.Get("api_paste_code"))
		fmt.Fprint(w, reply.Load().(string))
	}))
	defer srv.Close()

	pc := NewPasteClient(testClient(0), srv.URL, "key")
	reply.Store("https://pastebin.com/abc123")
	link, err := pc.Upload(context.Background(), "A\nB")
	require.NoError(t, err)
	assert.Equal(t, "https://pastebin.com/raw/abc123", link)

	reply.Store("Bad API request, invalid api_dev_key")
	_, err = pc.Upload(context.Background(), "A\nB")
	assert.Error(t, err)
}

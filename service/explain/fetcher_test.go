package explain

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/brojonat/suiscope/service/db"
	"github.com/brojonat/suiscope/service/sui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const payloadFixture = `{
  "transaction": {"data": {"sender": "0xaa", "transaction": {"kind": "ProgrammableTransaction", "inputs": [], "transactions": []}}},
  "effects": {"status": {"status": "success"}, "gasUsed": {"computationCost": "1", "storageCost": "2", "storageRebate": "0"}},
  "checkpoint": "77"
}`

type fakeArchive struct {
	rows      map[string]*db.RawTransaction
	getErr    error
	upsertErr error
	upserts   []db.UpsertRawTransactionParams
}

func (a *fakeArchive) GetRawTransaction(ctx context.Context, digest string) (*db.RawTransaction, error) {
	if a.getErr != nil {
		return nil, a.getErr
	}
	row, ok := a.rows[digest]
	if !ok {
		return nil, db.ErrNotFound
	}
	return row, nil
}

func (a *fakeArchive) UpsertRawTransaction(ctx context.Context, params db.UpsertRawTransactionParams) (*db.RawTransaction, error) {
	a.upserts = append(a.upserts, params)
	if a.upsertErr != nil {
		return nil, a.upsertErr
	}
	return &db.RawTransaction{Digest: params.Digest, Payload: params.Payload}, nil
}

type fakeSource struct {
	payload json.RawMessage
	err     error
	calls   int
}

func (s *fakeSource) GetTransactionPayload(ctx context.Context, digest string) (json.RawMessage, error) {
	s.calls++
	return s.payload, s.err
}

func TestArchiveFetcher_MissFetchesAndArchives(t *testing.T) {
	archive := &fakeArchive{rows: map[string]*db.RawTransaction{}}
	source := &fakeSource{payload: json.RawMessage(payloadFixture)}
	f := NewArchiveFetcher(archive, source, discardLogger())

	raw, err := f.GetTransaction(context.Background(), "D1")
	require.NoError(t, err)

	assert.Equal(t, "D1", raw.Digest, "digest filled from the request")
	assert.Equal(t, "0xaa", raw.Sender)
	assert.Equal(t, 1, source.calls)
	require.Len(t, archive.upserts, 1)
	assert.Equal(t, "0xaa", archive.upserts[0].Sender)
	require.NotNil(t, archive.upserts[0].Checkpoint)
	assert.Equal(t, uint64(77), *archive.upserts[0].Checkpoint)
}

func TestArchiveFetcher_HitSkipsRPC(t *testing.T) {
	archive := &fakeArchive{rows: map[string]*db.RawTransaction{
		"D1": {Digest: "D1", Payload: json.RawMessage(payloadFixture)},
	}}
	source := &fakeSource{err: errors.New("should not be called")}
	f := NewArchiveFetcher(archive, source, discardLogger())

	raw, err := f.GetTransaction(context.Background(), "D1")
	require.NoError(t, err)
	assert.Equal(t, sui.StatusSuccess, raw.Status)
	assert.Zero(t, source.calls)
}

func TestArchiveFetcher_CorruptArchiveRefetches(t *testing.T) {
	archive := &fakeArchive{rows: map[string]*db.RawTransaction{
		"D1": {Digest: "D1", Payload: json.RawMessage(`[]`)},
	}}
	source := &fakeSource{payload: json.RawMessage(payloadFixture)}
	f := NewArchiveFetcher(archive, source, discardLogger())

	_, err := f.GetTransaction(context.Background(), "D1")
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls)
}

func TestArchiveFetcher_ArchiveFailuresAreNonFatal(t *testing.T) {
	archive := &fakeArchive{getErr: errors.New("db down"), upsertErr: errors.New("db down")}
	source := &fakeSource{payload: json.RawMessage(payloadFixture)}
	f := NewArchiveFetcher(archive, source, discardLogger())

	raw, err := f.GetTransaction(context.Background(), "D1")
	require.NoError(t, err)
	assert.NotNil(t, raw)
}

func TestArchiveFetcher_SourceErrors(t *testing.T) {
	archive := &fakeArchive{rows: map[string]*db.RawTransaction{}}

	f := NewArchiveFetcher(archive, &fakeSource{err: sui.ErrTransactionNotFound}, discardLogger())
	_, err := f.GetTransaction(context.Background(), "D1")
	assert.ErrorIs(t, err, sui.ErrTransactionNotFound)

	f = NewArchiveFetcher(archive, &fakeSource{payload: json.RawMessage(`"nope"`)}, discardLogger())
	_, err = f.GetTransaction(context.Background(), "D1")
	assert.ErrorIs(t, err, sui.ErrUpstream)
	assert.Empty(t, archive.upserts)
}

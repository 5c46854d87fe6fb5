package services

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// constEmbedder returns the same vector for every input.
type constEmbedder struct {
	vec []float32
	err error
}

func (c *constEmbedder) Embed(context.Context, string) ([]float32, error) {
	return c.vec, c.err
}

// The chroma fakes embed the v2 interfaces and override only the methods the
// corpus store touches.

type fakeGetResult struct {
	chromago.GetResult
	metadatas chromago.DocumentMetadatas
}

func (f *fakeGetResult) GetMetadatas() chromago.DocumentMetadatas {
	return f.metadatas
}

type fakeQueryResult struct {
	chromago.QueryResult
	docGroups  []chromago.Documents
	metaGroups []chromago.DocumentMetadatas
}

func (f *fakeQueryResult) GetDocumentsGroups() []chromago.Documents {
	return f.docGroups
}

func (f *fakeQueryResult) GetMetadatasGroups() []chromago.DocumentMetadatas {
	return f.metaGroups
}

type fakeDocument struct {
	chromago.Document
	content string
}

func (f *fakeDocument) ContentString() string {
	return f.content
}

// fakeChunkMetadata marshals like the real DocumentMetadata, which the store
// reads by round-tripping through JSON.
type fakeChunkMetadata struct {
	chromago.DocumentMetadata
	attrs map[string]interface{}
}

func (f *fakeChunkMetadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.attrs)
}

func chunkMetadata(path, hash string) chromago.DocumentMetadata {
	return &fakeChunkMetadata{attrs: map[string]interface{}{
		"source_file": path,
		"file_hash":   hash,
		"chunk_num":   0,
	}}
}

type fakeCollection struct {
	chromago.Collection

	getResult   chromago.GetResult
	getErr      error
	queryResult chromago.QueryResult
	queryErr    error

	addCalls    int
	deleteCalls int
}

func (f *fakeCollection) Get(context.Context, ...chromago.CollectionGetOption) (chromago.GetResult, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.getResult == nil {
		return &fakeGetResult{}, nil
	}
	return f.getResult, nil
}

func (f *fakeCollection) Add(context.Context, ...chromago.CollectionAddOption) error {
	f.addCalls++
	return nil
}

func (f *fakeCollection) Delete(context.Context, ...chromago.CollectionDeleteOption) error {
	f.deleteCalls++
	return nil
}

func (f *fakeCollection) Query(context.Context, ...chromago.CollectionQueryOption) (chromago.QueryResult, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.queryResult, nil
}

func newIndexer(collection chromago.Collection) *CorpusIndexingService {
	return NewCorpusIndexingService(collection, &constEmbedder{vec: []float32{0.1, 0.2}}, 256, 50)
}

func TestScanIndexesNewFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "note.txt"), []byte("some corpus text"), 0644))

	collection := &fakeCollection{}
	newIndexer(collection).ScanAndIndexDirectory(context.Background(), dir)

	assert.GreaterOrEqual(t, collection.addCalls, 1)
	assert.Equal(t, 0, collection.deleteCalls)
}

func TestScanSkipsUnchangedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("unchanged text"), 0644))

	hash, err := hashFile(path)
	require.NoError(t, err)

	collection := &fakeCollection{
		getResult: &fakeGetResult{metadatas: chromago.DocumentMetadatas{chunkMetadata(path, hash)}},
	}
	newIndexer(collection).ScanAndIndexDirectory(context.Background(), dir)

	assert.Equal(t, 0, collection.addCalls)
	assert.Equal(t, 0, collection.deleteCalls)
}

func TestScanReindexesChangedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(path, []byte("fresh contents"), 0644))

	collection := &fakeCollection{
		getResult: &fakeGetResult{metadatas: chromago.DocumentMetadatas{chunkMetadata(path, "stale-hash")}},
	}
	newIndexer(collection).ScanAndIndexDirectory(context.Background(), dir)

	// Old chunks are pruned before the new version is embedded.
	assert.Equal(t, 1, collection.deleteCalls)
	assert.GreaterOrEqual(t, collection.addCalls, 1)
}

func TestScanPrunesRemovedFile(t *testing.T) {
	dir := t.TempDir()
	gone := filepath.Join(dir, "deleted.txt")

	collection := &fakeCollection{
		getResult: &fakeGetResult{metadatas: chromago.DocumentMetadatas{chunkMetadata(gone, "old-hash")}},
	}
	newIndexer(collection).ScanAndIndexDirectory(context.Background(), dir)

	assert.Equal(t, 1, collection.deleteCalls)
	assert.Equal(t, 0, collection.addCalls)
}

func TestScanIgnoresUnsupportedFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "image.png"), []byte{0x89, 0x50}, 0644))

	collection := &fakeCollection{}
	newIndexer(collection).ScanAndIndexDirectory(context.Background(), dir)

	assert.Equal(t, 0, collection.addCalls)
	assert.Equal(t, 0, collection.deleteCalls)
}

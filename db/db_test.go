package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/jsphweid/polyindex/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDynamo struct {
	dynamodbiface.DynamoDBAPI
	items      map[string]map[string]*dynamodb.AttributeValue
	batchSizes []int
	deferOnce  bool
}

func newFake() *fakeDynamo {
	return &fakeDynamo{items: make(map[string]map[string]*dynamodb.AttributeValue)}
}

func (f *fakeDynamo) BatchGetItemWithContext(_ aws.Context, in *dynamodb.BatchGetItemInput, _ ...request.Option) (*dynamodb.BatchGetItemOutput, error) {
	out := &dynamodb.BatchGetItemOutput{Responses: make(map[string][]map[string]*dynamodb.AttributeValue)}
	for table, ka := range in.RequestItems {
		f.batchSizes = append(f.batchSizes, len(ka.Keys))
		keys := ka.Keys
		if f.deferOnce && len(keys) > 1 {
			f.deferOnce = false
			out.UnprocessedKeys = map[string]*dynamodb.KeysAndAttributes{table: {Keys: keys[1:]}}
			keys = keys[:1]
		}
		for _, k := range keys {
			if it, ok := f.items[*k["PK"].S]; ok {
				out.Responses[table] = append(out.Responses[table], it)
			}
		}
	}
	return out, nil
}

func (f *fakeDynamo) PutItemWithContext(_ aws.Context, in *dynamodb.PutItemInput, _ ...request.Option) (*dynamodb.PutItemOutput, error) {
	f.items[*in.Item["PK"].S] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func TestPutAndGet(t *testing.T) {
	ctx := context.Background()
	fake := newFake()
	store := NewWithClient(fake, "test-table")

	require.NoError(t, store.PutMetadata(ctx, "kyrie.mid", model.Metadata{Title: "Kyrie", Composer: "Palestrina", Year: 1567}))
	require.NoError(t, store.PutMetadata(ctx, "gloria.mid", model.Metadata{Title: "Gloria"}))

	got, err := store.GetMetadatas(ctx, []string{"kyrie.mid", "gloria.mid", "unknown.mid"})
	require.NoError(t, err)
	assert.Equal(t, map[string]model.Metadata{
		"kyrie.mid":  {Title: "Kyrie", Composer: "Palestrina", Year: 1567},
		"gloria.mid": {Title: "Gloria"},
	}, got)
}

func TestGetBatchesAndRetries(t *testing.T) {
	ctx := context.Background()
	fake := newFake()
	fake.deferOnce = true
	store := NewWithClient(fake, "test-table")

	var names []string
	for i := 0; i < 23; i++ {
		name := fmt.Sprintf("%02d.mid", i)
		names = append(names, name)
		require.NoError(t, store.PutMetadata(ctx, name, model.Metadata{Title: name}))
	}

	got, err := store.GetMetadatas(ctx, names)
	require.NoError(t, err)
	assert.Len(t, got, 23)
	// first batch is split by the unprocessed retry
	assert.Equal(t, []int{10, 9, 10, 3}, fake.batchSizes)
}

func TestGetNothing(t *testing.T) {
	store := NewWithClient(newFake(), "test-table")
	got, err := store.GetMetadatas(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

package db

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/jsphweid/polyindex/constants"
	"github.com/jsphweid/polyindex/model"
	"github.com/pkg/errors"
)

// unprocessed keys are retried this many times before giving up
const maxBatchAttempts = 3

type item struct {
	PK       string `dynamodbav:"PK"`
	Title    string `dynamodbav:"Title"`
	Composer string `dynamodbav:"Composer"`
	Year     uint   `dynamodbav:"Year,omitempty"`
}

// MetadataStore looks up piece metadata by file name.
type MetadataStore struct {
	client dynamodbiface.DynamoDBAPI
	table  string
}

func New(endpoint string) (*MetadataStore, error) {
	sess, err := session.NewSession(&aws.Config{
		Region:   aws.String("localhost"),
		Endpoint: aws.String(endpoint),
	})
	if err != nil {
		return nil, errors.Wrap(err, "Could not create a new DynamoDB session")
	}
	return NewWithClient(dynamodb.New(sess), constants.MetadataTable), nil
}

func NewWithClient(client dynamodbiface.DynamoDBAPI, table string) *MetadataStore {
	return &MetadataStore{client: client, table: table}
}

// GetMetadatas fetches metadata for every file name that has some. File names
// are requested in batches of constants.MaxMetadataBatch.
func (m *MetadataStore) GetMetadatas(ctx context.Context, filenames []string) (map[string]model.Metadata, error) {
	res := make(map[string]model.Metadata)
	for start := 0; start < len(filenames); start += constants.MaxMetadataBatch {
		end := start + constants.MaxMetadataBatch
		if end > len(filenames) {
			end = len(filenames)
		}
		if err := m.getBatch(ctx, filenames[start:end], res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (m *MetadataStore) getBatch(ctx context.Context, filenames []string, res map[string]model.Metadata) error {
	var keys []map[string]*dynamodb.AttributeValue
	for _, filename := range filenames {
		keys = append(keys, map[string]*dynamodb.AttributeValue{
			"PK": {S: aws.String(filename)},
		})
	}
	request := map[string]*dynamodb.KeysAndAttributes{
		m.table: {Keys: keys},
	}

	for attempt := 0; attempt < maxBatchAttempts && len(request) > 0; attempt++ {
		out, err := m.client.BatchGetItemWithContext(ctx, &dynamodb.BatchGetItemInput{RequestItems: request})
		if err != nil {
			return errors.Wrap(err, "Error from DynamoDB")
		}
		for _, v := range out.Responses[m.table] {
			var it item
			if err := dynamodbattribute.UnmarshalMap(v, &it); err != nil {
				return errors.Wrap(err, "Could not read metadata item")
			}
			res[it.PK] = model.Metadata{Title: it.Title, Composer: it.Composer, Year: it.Year}
		}
		request = out.UnprocessedKeys
	}
	if len(request) > 0 {
		return errors.Errorf("DynamoDB left %d metadata keys unprocessed", len(request[m.table].Keys))
	}
	return nil
}

func (m *MetadataStore) PutMetadata(ctx context.Context, filename string, meta model.Metadata) error {
	av, err := dynamodbattribute.MarshalMap(item{PK: filename, Title: meta.Title, Composer: meta.Composer, Year: meta.Year})
	if err != nil {
		return errors.Wrap(err, "Could not encode metadata item")
	}
	_, err = m.client.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(m.table),
		Item:      av,
	})
	return errors.Wrap(err, "Error from DynamoDB")
}

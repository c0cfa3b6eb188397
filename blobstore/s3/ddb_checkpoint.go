package s3

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hupe1980/bankergo/archive"
)

// DDBClient is the subset of the DynamoDB API the checkpoint store uses.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DDBCheckpointStore tracks the latest archived snapshot in DynamoDB.
//
// S3 has no compare-and-swap, so the pointer advance uses a DynamoDB
// conditional write keyed on (base_uri, version): two archivers racing on
// the same version lose deterministically instead of silently overwriting
// each other's pointer.
type DDBCheckpointStore struct {
	client    DDBClient
	tableName string
	baseURI   string
}

var _ archive.CheckpointStore = (*DDBCheckpointStore)(nil)

// NewDDBCheckpointStore creates a checkpoint store. baseURI identifies the
// snapshot location (e.g. "s3://bucket/prefix") and is the partition key.
func NewDDBCheckpointStore(client DDBClient, tableName, baseURI string) *DDBCheckpointStore {
	return &DDBCheckpointStore{
		client:    client,
		tableName: tableName,
		baseURI:   baseURI,
	}
}

// Latest returns the most recently committed snapshot name and version.
// Version 0 with an empty name means no checkpoint exists yet.
func (s *DDBCheckpointStore) Latest(ctx context.Context) (string, uint64, error) {
	resp, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("base_uri = :uri"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uri": &types.AttributeValueMemberS{Value: s.baseURI},
		},
		ScanIndexForward: aws.Bool(false), // newest version first
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return "", 0, fmt.Errorf("failed to query checkpoint: %w", err)
	}
	if len(resp.Items) == 0 {
		return "", 0, nil
	}

	item := resp.Items[0]
	versionAttr, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return "", 0, errors.New("checkpoint item missing version attribute")
	}
	version, err := strconv.ParseUint(versionAttr.Value, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid checkpoint version: %w", err)
	}
	nameAttr, ok := item["name"].(*types.AttributeValueMemberS)
	if !ok {
		return "", 0, errors.New("checkpoint item missing name attribute")
	}
	return nameAttr.Value, version, nil
}

// Advance commits name as the snapshot for the given version. It fails with
// archive.ErrConcurrentUpdate if that version was already committed by
// another archiver.
func (s *DDBCheckpointStore) Advance(ctx context.Context, name string, version uint64) error {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item: map[string]types.AttributeValue{
			"base_uri": &types.AttributeValueMemberS{Value: s.baseURI},
			"version":  &types.AttributeValueMemberN{Value: strconv.FormatUint(version, 10)},
			"name":     &types.AttributeValueMemberS{Value: name},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return archive.ErrConcurrentUpdate
		}
		return fmt.Errorf("failed to advance checkpoint: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"imagevault/internal/config"
	"imagevault/internal/domain"
)

// ListQuery describes a page request against the user index. Zero-valued
// filters are skipped; nil size bounds mean unbounded.
type ListQuery struct {
	UserID      string
	Status      domain.Status
	Tags        []string
	ContentType string
	MinSize     *int64
	MaxSize     *int64
	Limit       int32
	StartToken  string
}

type Page struct {
	Items     []domain.Image
	NextToken string
}

type DynamoDBRepository interface {
	Save(ctx context.Context, img *domain.Image) error
	Get(ctx context.Context, imageID string) (*domain.Image, error)
	Update(ctx context.Context, imageID string, updates map[string]any) error
	Delete(ctx context.Context, imageID string) error
	QueryByUser(ctx context.Context, q ListQuery) (*Page, error)
}

type dynamoDBRepository struct {
	client *dynamodb.Client
	cfg    *config.DynamoDBConfig
	log    *zap.Logger
}

func NewDynamoDBRepository(client *dynamodb.Client, cfg *config.DynamoDBConfig, log *zap.Logger) DynamoDBRepository {
	repo := &dynamoDBRepository{
		client: client,
		cfg:    cfg,
		log:    log,
	}

	if cfg.AutoCreate {
		if err := repo.ensureTableExists(context.Background()); err != nil {
			log.Warn("Failed to ensure table exists", zap.Error(err))
		}
	}

	return repo
}

func (r *dynamoDBRepository) ensureTableExists(ctx context.Context) error {
	_, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(r.cfg.Table),
	})
	if err == nil {
		return nil
	}

	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return err
	}

	r.log.Info("Creating table", zap.String("table", r.cfg.Table))

	throughput := &types.ProvisionedThroughput{
		ReadCapacityUnits:  aws.Int64(5),
		WriteCapacityUnits: aws.Int64(5),
	}

	_, err = r.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(r.cfg.Table),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("image_id"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("user_id"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("status"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("upload_timestamp"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("image_id"), KeyType: types.KeyTypeHash},
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			{
				IndexName: aws.String(r.cfg.UserIndex),
				KeySchema: []types.KeySchemaElement{
					{AttributeName: aws.String("user_id"), KeyType: types.KeyTypeHash},
					{AttributeName: aws.String("upload_timestamp"), KeyType: types.KeyTypeRange},
				},
				Projection:            &types.Projection{ProjectionType: types.ProjectionTypeAll},
				ProvisionedThroughput: throughput,
			},
			{
				IndexName: aws.String(r.cfg.StatusIndex),
				KeySchema: []types.KeySchemaElement{
					{AttributeName: aws.String("status"), KeyType: types.KeyTypeHash},
					{AttributeName: aws.String("upload_timestamp"), KeyType: types.KeyTypeRange},
				},
				Projection:            &types.Projection{ProjectionType: types.ProjectionTypeAll},
				ProvisionedThroughput: throughput,
			},
		},
		ProvisionedThroughput: throughput,
	})
	if err != nil {
		return err
	}

	waiter := dynamodb.NewTableExistsWaiter(r.client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(r.cfg.Table),
	}, 30*time.Second); err != nil {
		return fmt.Errorf("waiting for table %s: %w", r.cfg.Table, err)
	}

	r.log.Info("Table created", zap.String("table", r.cfg.Table))
	return nil
}

func (r *dynamoDBRepository) key(imageID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"image_id": &types.AttributeValueMemberS{Value: imageID},
	}
}

func (r *dynamoDBRepository) Save(ctx context.Context, img *domain.Image) error {
	item, err := attributevalue.MarshalMap(img)
	if err != nil {
		return fmt.Errorf("marshaling image %s: %w", img.ImageID, err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.cfg.Table),
		Item:      item,
	})
	if err != nil {
		r.log.Error("Failed to save metadata",
			zap.String("image_id", img.ImageID),
			zap.Error(err))
		return err
	}

	r.log.Info("Metadata saved",
		zap.String("image_id", img.ImageID),
		zap.String("user_id", img.UserID))

	return nil
}

func (r *dynamoDBRepository) Get(ctx context.Context, imageID string) (*domain.Image, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.cfg.Table),
		Key:       r.key(imageID),
	})
	if err != nil {
		r.log.Error("Failed to get metadata",
			zap.String("image_id", imageID),
			zap.Error(err))
		return nil, err
	}

	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}

	var img domain.Image
	if err := attributevalue.UnmarshalMap(out.Item, &img); err != nil {
		return nil, fmt.Errorf("unmarshaling image %s: %w", imageID, err)
	}

	return &img, nil
}

func (r *dynamoDBRepository) Update(ctx context.Context, imageID string, updates map[string]any) error {
	upd := expression.UpdateBuilder{}
	count := 0
	for name, value := range updates {
		if name == "image_id" {
			continue
		}
		upd = upd.Set(expression.Name(name), expression.Value(value))
		count++
	}
	if count == 0 {
		return nil
	}

	expr, err := expression.NewBuilder().WithUpdate(upd).Build()
	if err != nil {
		return fmt.Errorf("building update expression: %w", err)
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.cfg.Table),
		Key:                       r.key(imageID),
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		r.log.Error("Failed to update metadata",
			zap.String("image_id", imageID),
			zap.Error(err))
		return err
	}

	r.log.Info("Metadata updated", zap.String("image_id", imageID))
	return nil
}

func (r *dynamoDBRepository) Delete(ctx context.Context, imageID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.cfg.Table),
		Key:       r.key(imageID),
	})
	if err != nil {
		r.log.Error("Failed to delete metadata",
			zap.String("image_id", imageID),
			zap.Error(err))
		return err
	}

	r.log.Info("Metadata deleted", zap.String("image_id", imageID))
	return nil
}

// QueryByUser pages through the user index newest-first. Filters are applied
// server-side after the key condition, so a page can come back shorter than
// the limit while more matches remain.
func (r *dynamoDBRepository) QueryByUser(ctx context.Context, q ListQuery) (*Page, error) {
	builder := expression.NewBuilder().
		WithKeyCondition(expression.Key("user_id").Equal(expression.Value(q.UserID)))

	if filter, ok := buildListFilter(q); ok {
		builder = builder.WithFilter(filter)
	}

	expr, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("building query expression: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.cfg.Table),
		IndexName:                 aws.String(r.cfg.UserIndex),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(q.Limit),
		ScanIndexForward:          aws.Bool(false),
	}

	if q.StartToken != "" {
		startKey, err := decodeStartKey(q.StartToken)
		if err != nil {
			r.log.Warn("Ignoring invalid pagination token", zap.Error(err))
		} else {
			input.ExclusiveStartKey = startKey
		}
	}

	out, err := r.client.Query(ctx, input)
	if err != nil {
		r.log.Error("Failed to query by user",
			zap.String("user_id", q.UserID),
			zap.Error(err))
		return nil, err
	}

	items := make([]domain.Image, 0, len(out.Items))
	for _, raw := range out.Items {
		var img domain.Image
		if err := attributevalue.UnmarshalMap(raw, &img); err != nil {
			return nil, fmt.Errorf("unmarshaling query item: %w", err)
		}
		items = append(items, img)
	}

	page := &Page{Items: items}
	if len(out.LastEvaluatedKey) > 0 {
		token, err := encodeStartKey(out.LastEvaluatedKey)
		if err != nil {
			return nil, fmt.Errorf("encoding pagination token: %w", err)
		}
		page.NextToken = token
	}

	r.log.Info("Queried images",
		zap.String("user_id", q.UserID),
		zap.Int("count", len(items)),
		zap.Bool("has_more", page.NextToken != ""))

	return page, nil
}

func buildListFilter(q ListQuery) (expression.ConditionBuilder, bool) {
	var filters []expression.ConditionBuilder

	if q.Status != "" {
		filters = append(filters, expression.Name("status").Equal(expression.Value(q.Status)))
	}
	if len(q.Tags) > 0 {
		tagCond := expression.Name("tags").Contains(q.Tags[0])
		for _, tag := range q.Tags[1:] {
			tagCond = tagCond.Or(expression.Name("tags").Contains(tag))
		}
		filters = append(filters, tagCond)
	}
	if q.ContentType != "" {
		filters = append(filters, expression.Name("content_type").Equal(expression.Value(q.ContentType)))
	}
	if q.MinSize != nil {
		filters = append(filters, expression.Name("size").GreaterThanEqual(expression.Value(*q.MinSize)))
	}
	if q.MaxSize != nil {
		filters = append(filters, expression.Name("size").LessThanEqual(expression.Value(*q.MaxSize)))
	}

	if len(filters) == 0 {
		return expression.ConditionBuilder{}, false
	}

	combined := filters[0]
	for _, f := range filters[1:] {
		combined = combined.And(f)
	}
	return combined, true
}

package store

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/yigitcanlotec/OOP-challenge-4/internal/models"
	apperrors "github.com/yigitcanlotec/OOP-challenge-4/pkg/errors"
)

const backendDynamo = "dynamodb"

// DynamoAPI is the subset of *dynamodb.Client used by the stores.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DynamoUserStore implements UserStore on a table keyed by "username" with a
// global secondary index on "session_key".
type DynamoUserStore struct {
	client       DynamoAPI
	tableName    string
	sessionIndex string
}

// NewDynamoUserStore creates a user store
func NewDynamoUserStore(client DynamoAPI, tableName, sessionIndex string) *DynamoUserStore {
	return &DynamoUserStore{
		client:       client,
		tableName:    tableName,
		sessionIndex: sessionIndex,
	}
}

func userKey(username string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"username": &types.AttributeValueMemberS{Value: username},
	}
}

func (s *DynamoUserStore) CreateUser(ctx context.Context, user *models.User) error {
	return instrument(ctx, backendDynamo, "create_user", func(ctx context.Context) error {
		item, err := attributevalue.MarshalMap(user)
		if err != nil {
			return apperrors.NewAppError(apperrors.CodeInternalError, "marshal user failed", err)
		}

		_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:           aws.String(s.tableName),
			Item:                item,
			ConditionExpression: aws.String("attribute_not_exists(username)"),
		})
		return err
	})
}

func (s *DynamoUserStore) GetUser(ctx context.Context, username string) (*models.User, error) {
	var user *models.User
	err := instrument(ctx, backendDynamo, "get_user", func(ctx context.Context) error {
		result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
			TableName:      aws.String(s.tableName),
			Key:            userKey(username),
			ConsistentRead: aws.Bool(true),
		})
		if err != nil {
			return err
		}
		if len(result.Item) == 0 {
			return apperrors.NotFound("user not found")
		}

		var u models.User
		if err := attributevalue.UnmarshalMap(result.Item, &u); err != nil {
			return apperrors.NewAppError(apperrors.CodeInternalError, "unmarshal user failed", err)
		}
		user = &u
		return nil
	})
	return user, err
}

func (s *DynamoUserStore) SetSessionKey(ctx context.Context, username, sessionKey string, at time.Time) error {
	return instrument(ctx, backendDynamo, "set_session_key", func(ctx context.Context) error {
		_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:           aws.String(s.tableName),
			Key:                 userKey(username),
			UpdateExpression:    aws.String("SET session_key = :session_key, last_login_at = :at"),
			ConditionExpression: aws.String("attribute_exists(username)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":session_key": &types.AttributeValueMemberS{Value: sessionKey},
				":at":          &types.AttributeValueMemberS{Value: at.UTC().Format(time.RFC3339Nano)},
			},
		})
		return err
	})
}

func (s *DynamoUserStore) FindBySessionKey(ctx context.Context, sessionKey string) ([]models.User, error) {
	var users []models.User
	err := instrument(ctx, backendDynamo, "find_by_session_key", func(ctx context.Context) error {
		result, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.tableName),
			IndexName:              aws.String(s.sessionIndex),
			KeyConditionExpression: aws.String("session_key = :key"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":key": &types.AttributeValueMemberS{Value: sessionKey},
			},
			// Two rows are enough to tell "exactly one" from "many"
			Limit: aws.Int32(2),
		})
		if err != nil {
			return err
		}
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &users); err != nil {
			return apperrors.NewAppError(apperrors.CodeInternalError, "unmarshal users failed", err)
		}
		return nil
	})
	return users, err
}

func (s *DynamoUserStore) UpdatePassword(ctx context.Context, username, oldHash, newHash string) error {
	return instrument(ctx, backendDynamo, "update_password", func(ctx context.Context) error {
		_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:           aws.String(s.tableName),
			Key:                 userKey(username),
			UpdateExpression:    aws.String("SET #password = :new"),
			ConditionExpression: aws.String("#password = :old"),
			ExpressionAttributeNames: map[string]string{
				"#password": "password",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":new": &types.AttributeValueMemberS{Value: newHash},
				":old": &types.AttributeValueMemberS{Value: oldHash},
			},
		})
		return err
	})
}

func (s *DynamoUserStore) DeleteUser(ctx context.Context, username string) error {
	return instrument(ctx, backendDynamo, "delete_user", func(ctx context.Context) error {
		_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName:           aws.String(s.tableName),
			Key:                 userKey(username),
			ConditionExpression: aws.String("attribute_exists(username)"),
		})
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return apperrors.NotFound("user not found")
		}
		return err
	})
}

// DynamoTaskStore implements TaskStore on a table with partition key
// "username" and sort key "todo_id". Listing goes through the configured
// index, or the base table when the index name is empty.
type DynamoTaskStore struct {
	client    DynamoAPI
	tableName string
	indexName string
}

// NewDynamoTaskStore creates a task store
func NewDynamoTaskStore(client DynamoAPI, tableName, indexName string) *DynamoTaskStore {
	return &DynamoTaskStore{
		client:    client,
		tableName: tableName,
		indexName: indexName,
	}
}

func taskKey(username, todoID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"username": &types.AttributeValueMemberS{Value: username},
		"todo_id":  &types.AttributeValueMemberS{Value: todoID},
	}
}

func (s *DynamoTaskStore) ListTasks(ctx context.Context, username string) ([]models.Task, error) {
	tasks := []models.Task{}
	err := instrument(ctx, backendDynamo, "list_tasks", func(ctx context.Context) error {
		input := &dynamodb.QueryInput{
			TableName:              aws.String(s.tableName),
			KeyConditionExpression: aws.String("username = :username"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":username": &types.AttributeValueMemberS{Value: username},
			},
		}
		if s.indexName != "" {
			input.IndexName = aws.String(s.indexName)
		}

		paginator := dynamodb.NewQueryPaginator(s.client, input)
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return err
			}
			var batch []models.Task
			if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
				return apperrors.NewAppError(apperrors.CodeInternalError, "unmarshal tasks failed", err)
			}
			tasks = append(tasks, batch...)
		}
		return nil
	})
	return tasks, err
}

func (s *DynamoTaskStore) PutTask(ctx context.Context, task *models.Task) error {
	return instrument(ctx, backendDynamo, "put_task", func(ctx context.Context) error {
		item, err := attributevalue.MarshalMap(task)
		if err != nil {
			return apperrors.NewAppError(apperrors.CodeInternalError, "marshal task failed", err)
		}
		_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(s.tableName),
			Item:      item,
		})
		return err
	})
}

func (s *DynamoTaskStore) UpdateTitle(ctx context.Context, username, todoID, title string) error {
	return s.update(ctx, "update_title", username, todoID, "title", &types.AttributeValueMemberS{Value: title})
}

func (s *DynamoTaskStore) SetDone(ctx context.Context, username, todoID string, done bool) error {
	return s.update(ctx, "set_done", username, todoID, "isDone", &types.AttributeValueMemberBOOL{Value: done})
}

// update sets a single attribute on an existing task
func (s *DynamoTaskStore) update(ctx context.Context, op, username, todoID, attr string, value types.AttributeValue) error {
	return instrument(ctx, backendDynamo, op, func(ctx context.Context) error {
		_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:           aws.String(s.tableName),
			Key:                 taskKey(username, todoID),
			UpdateExpression:    aws.String("SET #attr = :value"),
			ConditionExpression: aws.String("attribute_exists(todo_id)"),
			ExpressionAttributeNames: map[string]string{
				"#attr": attr,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":value": value,
			},
		})
		return err
	})
}

func (s *DynamoTaskStore) DeleteTask(ctx context.Context, username, todoID string) error {
	return instrument(ctx, backendDynamo, "delete_task", func(ctx context.Context) error {
		_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(s.tableName),
			Key:       taskKey(username, todoID),
		})
		return err
	})
}

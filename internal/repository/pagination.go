package repository

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// startKey is the LastEvaluatedKey of a user-index query: the index keys
// plus the table key. All three are strings, so it survives a JSON round
// trip without type loss.
type startKey struct {
	ImageID         string `json:"image_id" dynamodbav:"image_id"`
	UserID          string `json:"user_id" dynamodbav:"user_id"`
	UploadTimestamp string `json:"upload_timestamp" dynamodbav:"upload_timestamp"`
}

func encodeStartKey(key map[string]types.AttributeValue) (string, error) {
	var sk startKey
	if err := attributevalue.UnmarshalMap(key, &sk); err != nil {
		return "", fmt.Errorf("unmarshaling start key: %w", err)
	}

	raw, err := json.Marshal(sk)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(raw), nil
}

func decodeStartKey(token string) (map[string]types.AttributeValue, error) {
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("decoding pagination token: %w", err)
	}

	var sk startKey
	if err := json.Unmarshal(raw, &sk); err != nil {
		return nil, fmt.Errorf("parsing pagination token: %w", err)
	}
	if sk.ImageID == "" || sk.UserID == "" || sk.UploadTimestamp == "" {
		return nil, fmt.Errorf("pagination token missing key attributes")
	}

	return attributevalue.MarshalMap(sk)
}

package dynamoutils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ParseValue determines the appropriate DynamoDB attribute type for a value
func ParseValue(val string) types.AttributeValue {
	trimmedVal := strings.TrimSpace(val)
	if trimmedVal == "" {
		return &types.AttributeValueMemberNULL{Value: true}
	}

	// Remove commas for number parsing
	numVal := strings.ReplaceAll(trimmedVal, ",", "")

	if intVal, err := strconv.ParseInt(numVal, 10, 64); err == nil {
		return &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", intVal)}
	}

	if floatVal, err := strconv.ParseFloat(numVal, 64); err == nil {
		return &types.AttributeValueMemberN{Value: fmt.Sprintf("%g", floatVal)}
	}

	lowerVal := strings.ToLower(trimmedVal)
	switch lowerVal {
	case "true", "yes":
		return &types.AttributeValueMemberBOOL{Value: true}
	case "false", "no":
		return &types.AttributeValueMemberBOOL{Value: false}
	}

	return &types.AttributeValueMemberS{Value: trimmedVal}
}

// ConvertStringMap builds a DynamoDB item from a flat string map, inferring
// attribute types with ParseValue. Keys with empty values are kept as NULL.
func ConvertStringMap(fields map[string]string) map[string]types.AttributeValue {
	item := make(map[string]types.AttributeValue, len(fields))
	for key, val := range fields {
		item[key] = ParseValue(val)
	}
	return item
}

package errors

import (
	"errors"

	"github.com/aws/smithy-go"
)

type storeMapping struct {
	code    ErrorCode
	message string
}

// storeErrorMap maps DynamoDB and S3 API error codes to fixed responses.
var storeErrorMap = map[string]storeMapping{
	"ConditionalCheckFailedException": {
		code:    CodeConditionFailed,
		message: "A condition specified in the operation could not be evaluated.",
	},
	"InternalServerError": {
		code:    CodeStoreInternal,
		message: "An error occurred on the server side.",
	},
	"InvalidEndpointException": {
		code:    CodeInvalidEndpoint,
		message: "Wrong/Invalid Endpoint.",
	},
	"ItemCollectionSizeLimitExceededException": {
		code:    CodeCollectionTooLarge,
		message: "An item collection is too large.",
	},
	"ProvisionedThroughputExceededException": {
		code:    CodeThroughputExceeded,
		message: "Your request rate is too high.",
	},
	"RequestLimitExceeded": {
		code:    CodeRequestLimit,
		message: "Throughput exceeds the current throughput quota for your account.",
	},
	"ResourceNotFoundException": {
		code:    CodeResourceNotFound,
		message: "The operation tried to access a nonexistent table or index.",
	},
	"TransactionConflictException": {
		code:    CodeTransactionConflict,
		message: "Operation was rejected because there is an ongoing transaction for the item.",
	},
	"NoSuchBucket": {
		code:    CodeResourceNotFound,
		message: "The specified bucket does not exist.",
	},
	"NoSuchKey": {
		code:    CodeResourceNotFound,
		message: "The specified key does not exist.",
	},
}

const unmappedStoreMessage = "The server refuses the attempt to brew coffee with a teapot."

// FromStore converts an SDK error into an AppError. Known API error codes get
// their fixed mapping; API errors with any other code become
// CodeUnmappedStore (418) so new failure kinds stay visible. Errors that never
// reached the service (network, credentials, context) are CodeStoreUnavailable.
func FromStore(err error, op string) error {
	if err == nil {
		return nil
	}
	if _, ok := As(err); ok {
		return err
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if m, ok := storeErrorMap[apiErr.ErrorCode()]; ok {
			return NewAppErrorf(m.code, err, "%s: %s", op, m.message)
		}
		return NewAppErrorf(CodeUnmappedStore, err, "%s: %s", op, unmappedStoreMessage)
	}

	return NewAppErrorf(CodeStoreUnavailable, err, "%s: store unavailable", op)
}

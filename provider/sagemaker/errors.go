package sagemaker

import (
	"net/http"
	"strings"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
	"github.com/aws/smithy-go"
	"github.com/func/cfn-sagemaker/handler"
	"github.com/pkg/errors"
)

// Error codes returned by AWS services that are not modeled as types.
var (
	throttlingCodes = map[string]bool{
		"Throttling":                             true,
		"ThrottlingException":                    true,
		"ThrottledException":                     true,
		"TooManyRequestsException":               true,
		"RequestLimitExceeded":                   true,
		"RequestThrottled":                       true,
		"RequestThrottledException":              true,
		"ProvisionedThroughputExceededException": true,
		"SlowDown":                               true,
	}
	accessDeniedCodes = map[string]bool{
		"AccessDenied":                true,
		"AccessDeniedException":       true,
		"UnauthorizedOperation":       true,
		"UnrecognizedClientException": true,
		"InvalidClientTokenId":        true,
		"ExpiredToken":                true,
		"ExpiredTokenException":       true,
		"NotAuthorized":               true,
	}
	internalCodes = map[string]bool{
		"InternalError":       true,
		"InternalFailure":     true,
		"InternalServerError": true,
		"ServiceUnavailable":  true,
		"ServiceException":    true,
	}
	validationCodes = map[string]bool{
		"ValidationException":    true,
		"ValidationError":        true,
		"InvalidParameterValue":  true,
		"InvalidParameter":       true,
		"MissingParameter":       true,
		"SerializationException": true,
	}
)

// kindOf classifies an error returned from the SageMaker client. The returned
// message is the message supplied by the service, or the error string if the
// error did not originate from the service.
//
// The api name is used to tell apart "in use" errors on create, which mean
// the resource already exists, from the same error on other calls.
func kindOf(err error, api string) (handler.Kind, string) {
	var (
		notFound *types.ResourceNotFound
		inUse    *types.ResourceInUse
		limit    *types.ResourceLimitExceeded
		conflict *types.ConflictException
	)
	switch {
	case errors.As(err, &notFound):
		return handler.KindNotFound, notFound.ErrorMessage()
	case errors.As(err, &inUse):
		if strings.HasPrefix(api, "Create") {
			return handler.KindAlreadyExists, inUse.ErrorMessage()
		}
		return handler.KindConflict, inUse.ErrorMessage()
	case errors.As(err, &limit):
		return handler.KindLimitExceeded, limit.ErrorMessage()
	case errors.As(err, &conflict):
		return handler.KindConflict, conflict.ErrorMessage()
	}

	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return handler.KindUnknown, err.Error()
	}
	code, msg := apiErr.ErrorCode(), apiErr.ErrorMessage()

	switch {
	case code == "ResourceNotFound" || code == "ResourceNotFoundException":
		return handler.KindNotFound, msg
	case validationCodes[code] && lookup(api) && missing(msg):
		// SageMaker reports some missing resources, such as model package
		// groups, as validation errors.
		return handler.KindNotFound, msg
	case throttlingCodes[code]:
		return handler.KindThrottling, msg
	case accessDeniedCodes[code]:
		return handler.KindAccessDenied, msg
	case internalCodes[code]:
		return handler.KindInternal, msg
	case validationCodes[code]:
		return handler.KindInvalid, msg
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		switch status := respErr.HTTPStatusCode(); {
		case status == http.StatusTooManyRequests:
			return handler.KindThrottling, msg
		case status == http.StatusForbidden:
			return handler.KindAccessDenied, msg
		case status == http.StatusNotFound:
			return handler.KindNotFound, msg
		case status >= 500:
			return handler.KindInternal, msg
		case status >= 400:
			return handler.KindInvalid, msg
		}
	}

	if apiErr.ErrorFault() == smithy.FaultServer {
		return handler.KindInternal, msg
	}
	return handler.KindUnknown, msg
}

// lookup returns true for calls that address an existing resource by its
// identifier.
func lookup(api string) bool {
	for _, p := range []string{"Describe", "Get", "Delete"} {
		if strings.HasPrefix(api, p) {
			return true
		}
	}
	return false
}

func missing(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "does not exist") || strings.Contains(m, "not found") || strings.Contains(m, "cannot find")
}

// translate converts an error from an api call into the error reported to
// the orchestrator.
func translate(err error, typename, id, api string) *handler.Error {
	kind, msg := kindOf(err, api)
	return handler.Translate(kind, handler.Operation{
		TypeName:   typename,
		Identifier: id,
		API:        api,
		Message:    msg,
	})
}

// isNotFound returns true if err means the resource does not exist.
func isNotFound(err error, api string) bool {
	kind, _ := kindOf(err, api)
	return kind == handler.KindNotFound
}

package milvus

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/yami-cli/yami/pkg/errcode"
)

// Translate maps an SDK or transport failure onto the closed error
// taxonomy. Already-classified errors pass through untouched, gRPC
// status codes are mapped first, then the message is classified by
// content. Anything unrecognized becomes CONNECTION_ERROR with the
// original message preserved verbatim.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := errcode.From(err); ok {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errcode.Bare(errcode.ConnectionError, err.Error())
	}
	if st, ok := status.FromError(err); ok && st.Code() != codes.OK {
		if code, mapped := statusCode(st.Code()); mapped {
			return errcode.New(code, st.Message())
		}
	}
	if code, mapped := classify(err.Error()); mapped {
		return errcode.New(code, err.Error())
	}
	return errcode.Bare(errcode.ConnectionError, err.Error())
}

func statusCode(c codes.Code) (errcode.Code, bool) {
	switch c {
	case codes.Unavailable, codes.DeadlineExceeded:
		return errcode.ConnectionError, true
	case codes.Unauthenticated, codes.PermissionDenied:
		return errcode.AuthenticationError, true
	case codes.NotFound:
		return errcode.NotFound, true
	case codes.AlreadyExists:
		return errcode.AlreadyExists, true
	case codes.InvalidArgument:
		return errcode.ValidationError, true
	}
	return "", false
}

// classify matches server message fragments. Milvus reports most
// faults as plain text behind an OK or Unknown status, so ordering
// matters: authentication and existence checks run before the broad
// validation match.
func classify(msg string) (errcode.Code, bool) {
	msg = strings.ToLower(msg)
	switch {
	case contains(msg, "authentication", "unauthenticated", "unauthorized", "permission denied", "auth check failure"):
		return errcode.AuthenticationError, true
	case contains(msg, "already exist"):
		return errcode.AlreadyExists, true
	case contains(msg, "not found", "not exist", "doesn't exist", "can't find"):
		return errcode.NotFound, true
	case contains(msg, "connection", "connect", "timeout", "deadline", "unavailable"):
		return errcode.ConnectionError, true
	case contains(msg, "invalid", "validation", "illegal"):
		return errcode.ValidationError, true
	case contains(msg, "required", "missing"):
		return errcode.MissingArgument, true
	}
	return "", false
}

func contains(msg string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(msg, n) {
			return true
		}
	}
	return false
}

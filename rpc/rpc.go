// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package rpc defines the transport-agnostic vocabulary generated service
// stubs are written against: a channel abstraction carrying raw bytes for
// the four RPC shapes (unary, server-stream, client-stream, bidi), plus
// the status/error types a real transport reports through. Nothing here
// depends on a concrete transport; an HTTP/2, in-process, or test double
// channel all implement the same four-operation vtable.
package rpc

import (
	"context"
	"fmt"
)

// Code mirrors the gRPC status code space, numbered identically so a
// Channel backed by gRPC can pass Status.Code straight through.
type Code int32

const (
	CodeOK Code = iota
	CodeCancelled
	CodeUnknown
	CodeInvalidArgument
	CodeDeadlineExceeded
	CodeNotFound
	CodeAlreadyExists
	CodePermissionDenied
	CodeResourceExhausted
	CodeFailedPrecondition
	CodeAborted
	CodeOutOfRange
	CodeUnimplemented
	CodeInternal
	CodeUnavailable
	CodeDataLoss
	CodeUnauthenticated
)

func (c Code) String() string {
	switch c {
	case CodeOK:
		return "OK"
	case CodeCancelled:
		return "CANCELLED"
	case CodeUnknown:
		return "UNKNOWN"
	case CodeInvalidArgument:
		return "INVALID_ARGUMENT"
	case CodeDeadlineExceeded:
		return "DEADLINE_EXCEEDED"
	case CodeNotFound:
		return "NOT_FOUND"
	case CodeAlreadyExists:
		return "ALREADY_EXISTS"
	case CodePermissionDenied:
		return "PERMISSION_DENIED"
	case CodeResourceExhausted:
		return "RESOURCE_EXHAUSTED"
	case CodeFailedPrecondition:
		return "FAILED_PRECONDITION"
	case CodeAborted:
		return "ABORTED"
	case CodeOutOfRange:
		return "OUT_OF_RANGE"
	case CodeUnimplemented:
		return "UNIMPLEMENTED"
	case CodeInternal:
		return "INTERNAL"
	case CodeUnavailable:
		return "UNAVAILABLE"
	case CodeDataLoss:
		return "DATA_LOSS"
	case CodeUnauthenticated:
		return "UNAUTHENTICATED"
	default:
		return fmt.Sprintf("CODE(%d)", int32(c))
	}
}

// Status is the outcome of an RPC: CodeOK with an empty Message on
// success, otherwise the failure code and a human-readable detail.
type Status struct {
	Code    Code
	Message string
}

func (s Status) Error() string { return fmt.Sprintf("rpc: %s: %s", s.Code, s.Message) }

// OK reports whether s represents success.
func (s Status) OK() bool { return s.Code == CodeOK }

// ErrorKind classifies an RpcError the way spec's error taxonomy does,
// distinct from Status.Code: these four are about the call itself
// (never reached the server, the peer hung up, a deadline fired
// locally, the caller cancelled), versus Code, which is what the peer
// reported back about its handling of a call it did receive.
type ErrorKind int8

const (
	ErrorStatus ErrorKind = iota
	ErrorConnectionClosed
	ErrorTimeout
	ErrorCancelled
)

// RpcError wraps a call failure, tagged with the taxonomy kind. For
// ErrorStatus, Status carries the peer's reported code and message; for
// the other three kinds Status is the zero value and the failure never
// reached (or returned from) the peer.
type RpcError struct {
	Kind   ErrorKind
	Status Status
}

func (e *RpcError) Error() string {
	switch e.Kind {
	case ErrorConnectionClosed:
		return "rpc: connection closed"
	case ErrorTimeout:
		return "rpc: timeout"
	case ErrorCancelled:
		return "rpc: cancelled"
	default:
		return e.Status.Error()
	}
}

// Context carries the one piece of call metadata the core RPC
// vocabulary defines: a deadline, expressed as nanoseconds until
// expiry relative to when the call was issued. The core never enforces
// it; only a real Channel implementation interprets it (commonly by
// deriving a context.Context with the same deadline, via
// context.WithTimeout), so spec's "core does not implement deadline
// enforcement" boundary holds even though generated stubs plumb this
// through every call.
type Context struct {
	Ctx        context.Context
	DeadlineNS int64
}

// RecvStream is the receive side of a streamed RPC. Recv returns
// (nil, nil) once the stream is exhausted with no error, matching the
// "recv() -> T | null" contract; a non-nil error means the stream
// failed.
type RecvStream[T any] interface {
	Recv() (*T, error)
}

// SendStream is the send side of a streamed RPC.
type SendStream[T any] interface {
	Send(*T) error
	Close() error
}

// RawRecvStream and RawSendStream are the byte-level counterparts a
// Channel implementation deals in; typed SendStream/RecvStream wrappers
// in generated code marshal through these.
type RawRecvStream interface {
	Recv() ([]byte, error)
}

type RawSendStream interface {
	Send([]byte) error
	Close() error
}

// RawBidiStream pairs a RawSendStream and RawRecvStream for the
// client- and bidi-streaming call shapes, which need both directions
// open at once.
type RawBidiStream struct {
	Send RawSendStream
	Recv RawRecvStream
}

// Channel is the four-operation vtable every generated client stub is
// parameterized over. A concrete implementation might dial out over
// HTTP/2, dispatch in-process for tests, or replay a fixture.
type Channel interface {
	UnaryCall(ctx Context, path string, req []byte) ([]byte, error)
	OpenServerStream(ctx Context, path string, req []byte) (RawRecvStream, error)
	OpenClientStream(ctx Context, path string) (RawBidiStream, error)
	OpenBidiStream(ctx Context, path string) (RawBidiStream, error)
}

// MethodDescriptor is the transport-agnostic metadata for one RPC
// method, enough for a Channel or dispatcher to route a call without
// consulting the original .proto source.
type MethodDescriptor struct {
	Name            string
	FullPath        string
	ClientStreaming bool
	ServerStreaming bool
}

// ServiceDescriptor is the metadata for one service: its fully
// qualified name and the methods it declares, in declaration order.
type ServiceDescriptor struct {
	Name    string
	Methods []MethodDescriptor
}

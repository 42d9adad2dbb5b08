//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"campushub/domain"
	"campushub/domain/event"
)

// EventSink is one live delivery target, usually a connection's buffered
// outbound queue. Consume must not block longer than the context allows.
type EventSink interface {
	Consume(ctx context.Context, e event.Event) error
}

// IRegistry is the process-wide channel registry. It is the only shared
// mutable structure of the subsystem; every mutation goes through this
// interface so a distributed pub/sub could replace it without touching
// callers.
type IRegistry interface {
	Subscribe(sessionID, channel string, sink EventSink)
	Unsubscribe(sessionID, channel string)
	// Drop removes a session from every channel it belongs to.
	// No channel membership outlives its owning connection.
	Drop(sessionID string)
	// Publish delivers to every currently subscribed session, best effort:
	// one failing sink never aborts delivery to the rest.
	Publish(ctx context.Context, channel string, e event.Event) error
	PublishExcept(ctx context.Context, channel string, e event.Event, exceptSessionID string) error
}

// IIdentityGate turns an opaque bearer credential into an identity claim.
type IIdentityGate interface {
	Verify(token string) (domain.Claim, error)
}

type WorkerName string

// Worker doesn't protect itself; the supervisor does.
type Worker interface {
	Run(ctx context.Context) error
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// GetWorkerName uses reflection to retrieve the type name of the worker,
// avoiding manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

package commands

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/goliatone/go-ticketing-dashboard/components/console"
)

type stubService struct {
	submitCalls int
	deleteCalls int
	outcome     console.FormOutcome
	err         error
}

func (s *stubService) SubmitForm(context.Context, console.ViewerContext, string, string, url.Values) (console.FormOutcome, error) {
	s.submitCalls++
	return s.outcome, s.err
}

func (s *stubService) DeleteForm(context.Context, console.ViewerContext, string, string) (string, []console.Toast, error) {
	s.deleteCalls++
	toasts := []console.Toast{{Level: console.ToastInfo, Message: "bye"}}
	return "/admin_dashboard/creators?notice=deleted", toasts, s.err
}

type stubTelemetry struct {
	events []string
}

func (s *stubTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	s.events = append(s.events, event)
}

type stubPublisher struct {
	events []console.ConsoleEvent
}

func (s *stubPublisher) Publish(_ context.Context, event console.ConsoleEvent) error {
	s.events = append(s.events, event)
	return nil
}

func TestSubmitFormCommand(t *testing.T) {
	service := &stubService{outcome: console.FormOutcome{Redirect: "/admin_dashboard/creators?notice=created"}}
	telemetry := &stubTelemetry{}
	cmd := NewSubmitFormCommand(service, telemetry)

	var outcome console.FormOutcome
	err := cmd.Execute(context.Background(), SubmitFormInput{Form: console.FormCreators, Outcome: &outcome})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.submitCalls != 1 {
		t.Fatalf("expected submit call")
	}
	if outcome.Redirect == "" {
		t.Fatalf("expected outcome to be filled")
	}
	if len(telemetry.events) != 1 || telemetry.events[0] != "console.form.submit" {
		t.Fatalf("unexpected telemetry %v", telemetry.events)
	}
}

func TestSubmitFormCommandRequiresService(t *testing.T) {
	if err := NewSubmitFormCommand(nil, nil).Execute(context.Background(), SubmitFormInput{}); err == nil {
		t.Fatalf("expected error without service")
	}
}

func TestDeleteEntityCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewDeleteEntityCommand(service, nil)
	var redirect string
	var toasts []console.Toast
	err := cmd.Execute(context.Background(), DeleteEntityInput{Form: console.FormCreators, ID: "c1", Redirect: &redirect, Toasts: &toasts})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if service.deleteCalls != 1 || redirect == "" || len(toasts) != 1 {
		t.Fatalf("unexpected result: calls=%d redirect=%q toasts=%v", service.deleteCalls, redirect, toasts)
	}
}

func TestDeleteEntityCommandKeepsToastsOnFailure(t *testing.T) {
	service := &stubService{err: errors.New("boom")}
	cmd := NewDeleteEntityCommand(service, nil)
	var redirect string
	var toasts []console.Toast
	err := cmd.Execute(context.Background(), DeleteEntityInput{Form: console.FormCreators, ID: "c1", Redirect: &redirect, Toasts: &toasts})
	if err == nil {
		t.Fatalf("expected error")
	}
	if redirect != "" {
		t.Fatalf("redirect must stay empty on failure, got %q", redirect)
	}
	if len(toasts) != 1 {
		t.Fatalf("expected toasts to be returned on failure")
	}
}

func TestDeleteEntityCommandRequiresID(t *testing.T) {
	service := &stubService{}
	if err := NewDeleteEntityCommand(service, nil).Execute(context.Background(), DeleteEntityInput{}); err == nil {
		t.Fatalf("expected error without id")
	}
	if service.deleteCalls != 0 {
		t.Fatalf("service must not be called")
	}
}

func TestPublishRefreshCommand(t *testing.T) {
	publisher := &stubPublisher{}
	cmd := NewPublishRefreshCommand(publisher, nil)
	event := console.ConsoleEvent{Kind: console.EventListRefresh, List: console.ListCreators}
	if err := cmd.Execute(context.Background(), PublishRefreshInput{Event: event}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if len(publisher.events) != 1 || publisher.events[0].List != console.ListCreators {
		t.Fatalf("unexpected events %v", publisher.events)
	}
	if err := cmd.Execute(context.Background(), PublishRefreshInput{}); err == nil {
		t.Fatalf("expected error for empty kind")
	}
}

package mocks

import (
	"context"

	"signdesk/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) Record(ctx context.Context, documentID, action string, actor model.Actor) {
	m.Called(ctx, documentID, action, actor)
}

func (m *MockAuditService) List(ctx context.Context, actor model.Actor, documentID string) ([]model.AuditRecord, error) {
	args := m.Called(ctx, actor, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AuditRecord), args.Error(1)
}

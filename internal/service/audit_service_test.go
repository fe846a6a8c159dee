package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rci-portal-api/internal/audit"
	"github.com/noah-isme/rci-portal-api/internal/dto"
	"github.com/noah-isme/rci-portal-api/internal/models"
	"github.com/noah-isme/rci-portal-api/internal/repository"
	"github.com/noah-isme/rci-portal-api/internal/testutil"
)

type recordingPublisher struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (p *recordingPublisher) Publish(subject string, data []byte) error {
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, data)
	return p.err
}

func TestAuditServiceRecordMasksSecretsAndPublishes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	publisher := &recordingPublisher{}
	svc := NewAuditService(repository.NewAuditLogRepository(db), publisher, "rci.audit.recorded", testLogger())
	actor := testutil.CreateUser(t, db, models.RoleAdmin)

	log, err := svc.Record(context.Background(), audit.Entry{
		Entity:        "User",
		Action:        models.AuditActionCreate,
		ActorID:       &actor.ID,
		CorrelationID: "corr-42",
		Details: map[string]interface{}{
			"method": "POST",
			"request_data": map[string]interface{}{
				"username":         "jdoe",
				"password":         "secret123",
				"password_confirm": "secret123",
			},
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, log.ID)

	requestData, ok := log.Details["request_data"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "jdoe", requestData["username"])
	require.Equal(t, "***", requestData["password"])
	require.Equal(t, "***", requestData["password_confirm"])

	require.Equal(t, []string{"rci.audit.recorded"}, publisher.subjects)
	var event auditEvent
	require.NoError(t, json.Unmarshal(publisher.payloads[0], &event))
	require.Equal(t, log.ID, event.ID)
	require.Equal(t, "User", event.Entity)
	require.Equal(t, "corr-42", event.CorrelationID)
	require.NotContains(t, log.Details, "correlation_id")
}

func TestAuditServicePublishFailureDoesNotFailRecord(t *testing.T) {
	db := testutil.SetupTestDB(t)
	publisher := &recordingPublisher{err: errors.New("nats down")}
	svc := NewAuditService(repository.NewAuditLogRepository(db), publisher, "rci.audit.recorded", testLogger())

	_, err := svc.Record(context.Background(), audit.Entry{Entity: "Program", Action: models.AuditActionDelete, Details: map[string]interface{}{}})
	require.NoError(t, err)
	require.Len(t, publisher.subjects, 1)
}

func TestAuditServiceRejectsUnknownAction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewAuditService(repository.NewAuditLogRepository(db), nil, "", testLogger())

	_, err := svc.Record(context.Background(), audit.Entry{Entity: "Program", Action: "read"})
	require.Error(t, err)
}

func TestAuditServiceGetAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewAuditService(repository.NewAuditLogRepository(db), nil, "", testLogger())
	ctx := context.Background()

	log, err := svc.Record(ctx, audit.Entry{Entity: "Section", Action: models.AuditActionUpdate, Details: map[string]interface{}{"path": "/api/sections/1"}})
	require.NoError(t, err)

	fetched, err := svc.Get(ctx, log.ID)
	require.NoError(t, err)
	require.Equal(t, "/api/sections/1", fetched.Details["path"])

	list, err := svc.List(ctx, dto.AuditLogListRequest{Entity: "SECT", Page: 1, PageSize: 20})
	require.NoError(t, err)
	require.Equal(t, int64(1), list.Pagination.TotalItems)

	require.NoError(t, svc.Delete(ctx, log.ID))
	_, err = svc.Get(ctx, log.ID)
	require.ErrorIs(t, err, ErrAuditLogNotFound)
	require.ErrorIs(t, svc.Delete(ctx, log.ID), ErrAuditLogNotFound)
}

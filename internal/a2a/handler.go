package a2a

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/BerylCAtieno/agent-site-provisioner/internal/agent"
	"github.com/BerylCAtieno/agent-site-provisioner/internal/models"
)

const (
	msgNeedProfile      = "Please provide an agent profile with agent_name, brokerage, phone, email and city_area."
	msgGenerationFailed = "Website generation failed."
)

type WebsiteGenerator interface {
	GenerateWebsite(ctx context.Context, profile models.AgentProfile) *models.WebsiteRecord
}

type A2AHandler struct {
	generator WebsiteGenerator
	timeout   time.Duration
	log       logrus.FieldLogger
}

func NewA2AHandler(generator WebsiteGenerator, timeout time.Duration, log logrus.FieldLogger) *A2AHandler {
	return &A2AHandler{
		generator: generator,
		timeout:   timeout,
		log:       log,
	}
}

// RequestLoggingMiddleware logs every request with its status and latency.
// Bodies are only logged at debug level.
func RequestLoggingMiddleware(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		if log.IsLevelEnabled(logrus.DebugLevel) && c.Request.Body != nil {
			bodyBytes, _ := io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))
			log.WithField("path", c.Request.URL.Path).Debugf("request body: %s", bodyBytes)
		}

		c.Next()

		log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Info("request handled")
	}
}

// HandleProvisioner processes A2A messages
func (h *A2AHandler) HandleProvisioner(c *gin.Context) {
	bodyBytes, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.log.WithError(err).Error("failed to read request body")
		h.sendErrorResponse(c, nil, "Failed to read request body", CodeParseError)
		return
	}

	var rpcReq JSONRPCRequest
	if err := json.Unmarshal(bodyBytes, &rpcReq); err != nil || rpcReq.Method == "" {
		// Some clients post the message params without the JSON-RPC envelope.
		h.handleDirectMessage(c, bodyBytes)
		return
	}

	log := h.log.WithFields(logrus.Fields{"rpc_id": rpcReq.ID, "method": rpcReq.Method})

	if rpcReq.JSONRPC != "2.0" {
		log.WithField("version", rpcReq.JSONRPC).Warn("invalid JSON-RPC version")
		h.sendErrorResponse(c, rpcReq.ID, "Invalid JSON-RPC version", CodeInvalidRequest)
		return
	}

	switch rpcReq.Method {
	case "message/send", "agent/task":
		h.handleTask(c, rpcReq)
	default:
		log.Warn("unknown method")
		h.sendErrorResponse(c, rpcReq.ID, fmt.Sprintf("Method not found: %s", rpcReq.Method), CodeMethodNotFound)
	}
}

// handleDirectMessage handles a message sent without the JSON-RPC wrapper
func (h *A2AHandler) handleDirectMessage(c *gin.Context, bodyBytes []byte) {
	var msgParams MessageParams
	if !json.Valid(bodyBytes) {
		h.log.Warn("request body is not valid JSON")
		h.sendErrorResponse(c, nil, "Parse error", CodeParseError)
		return
	}
	if err := json.Unmarshal(bodyBytes, &msgParams); err != nil || len(msgParams.Message.Parts) == 0 {
		h.log.WithError(err).Warn("request is neither JSON-RPC nor a direct message")
		h.sendErrorResponse(c, nil, "Invalid request format", CodeInvalidRequest)
		return
	}

	result := h.runTask(c.Request.Context(), msgParams.Message)
	h.sendSuccessResponse(c, "direct-message", result)
}

func (h *A2AHandler) handleTask(c *gin.Context, rpcReq JSONRPCRequest) {
	var msgParams MessageParams
	if err := json.Unmarshal(rpcReq.Params, &msgParams); err != nil {
		h.log.WithError(err).Warn("invalid message params")
		h.sendErrorResponse(c, rpcReq.ID, "Invalid parameters", CodeInvalidParams)
		return
	}

	result := h.runTask(c.Request.Context(), msgParams.Message)
	h.sendSuccessResponse(c, rpcReq.ID, result)
}

func (h *A2AHandler) runTask(ctx context.Context, msg A2AMessage) TaskResult {
	taskID := msg.TaskID
	if taskID == "" {
		taskID = uuid.New().String()
	}

	profile, ok := h.extractProfile(msg)
	if !ok {
		return h.createTaskResult(taskID, StateInputRequired, msgNeedProfile, nil)
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	record := h.generator.GenerateWebsite(ctx, *profile)
	if record == nil {
		return h.createTaskResult(taskID, StateFailed, msgGenerationFailed, nil)
	}

	h.log.WithFields(logrus.Fields{
		"task_id":     taskID,
		"website_url": record.WebsiteURL,
	}).Info("website task completed")

	return h.createTaskResult(taskID, StateCompleted, formatWebsiteResponse(profile, record), record)
}

// ServeAgentCard serves the agent card
func (h *A2AHandler) ServeAgentCard(c *gin.Context) {
	if err := agent.LoadAgentCard(); err != nil {
		h.log.WithError(err).Error("agent card not available")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Agent card not available"})
		return
	}

	c.Data(http.StatusOK, "application/json", agent.AgentCardData)
}

// HandleCreateWebsite is the plain JSON variant of the provisioning task.
func (h *A2AHandler) HandleCreateWebsite(c *gin.Context) {
	var profile models.AgentProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid agent profile"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	record := h.generator.GenerateWebsite(ctx, profile)
	if record == nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "website generation failed"})
		return
	}

	c.JSON(http.StatusCreated, record)
}

// extractProfile finds the agent profile in a message. Data parts may hold the
// profile object itself or a conversation history whose latest text item is
// the profile JSON; text parts may hold the profile JSON directly.
func (h *A2AHandler) extractProfile(msg A2AMessage) (*models.AgentProfile, bool) {
	for _, part := range msg.Parts {
		switch part.Kind {
		case PartData:
			if profile, ok := parseProfile(part.Data); ok {
				return profile, true
			}

			var history []MessagePart
			if err := json.Unmarshal(part.Data, &history); err != nil {
				continue
			}
			for i := len(history) - 1; i >= 0; i-- {
				if history[i].Kind != PartText {
					continue
				}
				if profile, ok := parseProfile([]byte(cleanText(history[i].Text))); ok {
					return profile, true
				}
			}
		case PartText:
			if profile, ok := parseProfile([]byte(cleanText(part.Text))); ok {
				return profile, true
			}
		}
	}
	return nil, false
}

func parseProfile(data []byte) (*models.AgentProfile, bool) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}
	var profile models.AgentProfile
	if err := json.Unmarshal(trimmed, &profile); err != nil {
		return nil, false
	}
	if profile.AgentName == "" {
		return nil, false
	}
	return &profile, true
}

// cleanText strips the paragraph tags some chat clients wrap messages in.
func cleanText(text string) string {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, "<p>", "")
	text = strings.ReplaceAll(text, "</p>", "")
	return strings.TrimSpace(text)
}

func (h *A2AHandler) createTaskResult(taskID, state, text string, record *models.WebsiteRecord) TaskResult {
	result := TaskResult{
		ID:   taskID,
		Kind: "task",
		Status: TaskStatus{
			State:     state,
			Timestamp: Timestamp(),
			Message: &A2AMessage{
				Kind:      "message",
				Role:      RoleAgent,
				MessageID: uuid.New().String(),
				TaskID:    taskID,
				Parts:     []MessagePart{TextPart(text)},
			},
		},
	}

	if record == nil {
		return result
	}

	parts := []MessagePart{TextPart(text)}
	if data, err := DataPart(record); err == nil {
		parts = append(parts, data)
	} else {
		h.log.WithError(err).Warn("failed to encode website record")
	}

	result.Artifacts = []Artifact{
		{
			ArtifactID: uuid.New().String(),
			Name:       "Website Record",
			Parts:      parts,
		},
	}
	return result
}

func formatWebsiteResponse(profile *models.AgentProfile, record *models.WebsiteRecord) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("# Website for: %s\n\n", profile.AgentName))
	builder.WriteString(fmt.Sprintf("- URL: %s\n", record.WebsiteURL))
	builder.WriteString(fmt.Sprintf("- Site ID: %s\n", record.SiteIdentifier))
	builder.WriteString(fmt.Sprintf("- Status: %s\n", record.Status))
	return builder.String()
}

func (h *A2AHandler) sendSuccessResponse(c *gin.Context, id any, result any) {
	c.JSON(http.StatusOK, JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	})
}

func (h *A2AHandler) sendErrorResponse(c *gin.Context, id any, message string, code int) {
	h.log.WithFields(logrus.Fields{"code": code, "message": message}).Warn("sending JSON-RPC error")

	// JSON-RPC errors are sent with 200 OK
	c.JSON(http.StatusOK, JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &JSONRPCError{
			Code:    code,
			Message: message,
		},
	})
}

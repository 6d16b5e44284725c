// Package mcpfront exposes the same resolve -> merge -> invoke -> translate
// pipeline MetaRouter (C5) serves over HTTP as a single MCP tool, reusing
// the shared dual-surface envelope plumbing in internal/core so both front
// doors render one resolved action's outcome identically.
package mcpfront

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/actionmesh/metacontrol/internal/activationclient"
	"github.com/actionmesh/metacontrol/internal/authstore"
	"github.com/actionmesh/metacontrol/internal/core/transportwriter"
	"github.com/actionmesh/metacontrol/internal/entitystore"
	"github.com/actionmesh/metacontrol/internal/errortranslate"
	"github.com/actionmesh/metacontrol/internal/metamerge"
	"github.com/actionmesh/metacontrol/internal/metamodel"
	"github.com/actionmesh/metacontrol/internal/metaresolve"
	"github.com/actionmesh/metacontrol/internal/syscreds"
)

// Version is injected from build metadata.
var Version = "dev"

// Server exposes invoke_meta_action as an MCP tool.
type Server struct {
	server   *mcp.Server
	handler  http.Handler
	resolver *metaresolve.Resolver
	entities entitystore.Store
	auth     authstore.Store
	creds    *syscreds.Source
	client   *activationclient.Client
	systemID string
	policy   surfacePolicy[transportwriter.Surface, bool]
	log      *zap.Logger
}

// New wires an MCP front door. enabled gates whether the MCP surface itself
// answers calls. The policy registry lives in this package and is consulted
// only by the MCP tool; the HTTP router does not read it and is always
// enabled.
func New(
	resolver *metaresolve.Resolver,
	entities entitystore.Store,
	auth authstore.Store,
	creds *syscreds.Source,
	client *activationclient.Client,
	systemID string,
	enabled bool,
	log *zap.Logger,
) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	implVersion := Version
	if implVersion == "" {
		implVersion = "dev"
	}

	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "metacontrold",
		Version: implVersion,
	}, nil)

	s := &Server{
		server:   srv,
		resolver: resolver,
		entities: entities,
		auth:     auth,
		creds:    creds,
		client:   client,
		systemID: systemID,
		policy: newSurfacePolicy(map[transportwriter.Surface]bool{
			transportwriter.SurfaceHTTP: true,
			transportwriter.SurfaceMCP:  enabled,
		}),
		log: log.Named("mcpfront"),
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "invoke_meta_action",
		Description: "Invoke a meta-routable package's action the same way the HTTP Meta API would",
	}, s.handleInvoke)

	s.handler = mcp.NewSSEHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	return s
}

// Handler returns the HTTP SSE transport handler mounted at /mcp.
func (s *Server) Handler() http.Handler {
	if s == nil {
		return http.NotFoundHandler()
	}
	return s.handler
}

type invokeMetaActionInput struct {
	MetaPackage string            `json:"meta_package" jsonschema:"meta-routable package name"`
	Verb        string            `json:"verb" jsonschema:"HTTP verb to route as: GET, POST, or DELETE"`
	Subject     string            `json:"subject" jsonschema:"caller subject presenting credentials"`
	Key         string            `json:"key" jsonschema:"caller's credential key"`
	Query       map[string]string `json:"query,omitempty" jsonschema:"query parameters to merge, single-valued"`
	Body        map[string]any    `json:"body,omitempty" jsonschema:"JSON body parameters to merge"`
}

func (s *Server) handleInvoke(ctx context.Context, _ *mcp.CallToolRequest, input invokeMetaActionInput) (*mcp.CallToolResult, any, error) {
	if enabled, ok := s.policy.Resolve(transportwriter.SurfaceMCP); !ok || !enabled {
		message := transportwriter.UnsupportedSurfaceMessage("mcp front door", string(transportwriter.SurfaceMCP))
		return writeMCPEnvelope(transportwriter.UnsupportedSurfaceEnvelope(message))
	}

	requestID := uuid.NewString()

	identity, err := s.authenticate(ctx, input.Subject, input.Key)
	if err != nil {
		return writeMCPEnvelope(errortranslate.Response{Status: 401, Text: "unauthorized"}.ToEnvelope())
	}

	resolved, err := s.resolver.Resolve(ctx, input.MetaPackage, input.Verb)
	if err != nil {
		return writeMCPEnvelope(errortranslate.FromResolutionError(err).ToEnvelope())
	}

	action, err := s.entities.GetAction(ctx, s.systemID, resolved.Package.Name, resolved.ActionName)
	if err != nil {
		return writeMCPEnvelope(errortranslate.Response{Status: 500, JSON: map[string]any{"error": "action not found", "code": 0}}.ToEnvelope())
	}

	query := make(map[string][]string, len(input.Query))
	for k, v := range input.Query {
		query[k] = []string{v}
	}
	var body []byte
	if input.Body != nil {
		encoded, marshalErr := json.Marshal(input.Body)
		if marshalErr != nil {
			return writeMCPEnvelope(errortranslate.FromUnsupportedMedia().ToEnvelope())
		}
		body = encoded
	}

	merged, err := metamerge.Merge(metamerge.Request{
		PkgParameters:    resolved.PkgParameters,
		ActionParameters: action.Parameters,
		Query:            query,
		Body:             body,
		Verb:             input.Verb,
		Path:             "",
		Namespace:        identity.Namespace,
	})
	if err != nil {
		return writeMCPEnvelope(errortranslate.FromUnsupportedMedia().ToEnvelope())
	}

	systemKey, err := s.creds.Credentials(ctx)
	if err != nil {
		return writeMCPEnvelope(errortranslate.Response{Status: 500, JSON: map[string]any{"error": "internal error", "code": 0}}.ToEnvelope())
	}
	systemIdentity := metamodel.Identity{Subject: s.systemID, Namespace: s.systemID, AuthKey: systemKey}

	target := metamodel.SystemActionPath(s.systemID, resolved.Package.Name, resolved.ActionName)
	outcome, err := s.client.Invoke(ctx, systemIdentity, target, merged)
	if err != nil {
		s.log.Error("activation client invoke failed", zap.Error(err))
		return writeMCPEnvelope(errortranslate.Response{Status: 500, JSON: map[string]any{"error": "internal error", "code": 0}}.ToEnvelope())
	}

	return writeMCPEnvelope(errortranslate.FromOutcome(outcome, requestID).ToEnvelope())
}

func (s *Server) authenticate(ctx context.Context, subject, key string) (metamodel.Identity, error) {
	record, err := s.auth.Lookup(ctx, subject)
	if err != nil {
		return metamodel.Identity{}, err
	}
	return authstore.Verify(record, key)
}

// writeMCPEnvelope renders a ResponseEnvelope through the shared transport
// writer kernel, capturing the MCP-surface result into the tool's return
// values.
func writeMCPEnvelope(envelope *transportwriter.ResponseEnvelope) (*mcp.CallToolResult, any, error) {
	var result *mcp.CallToolResult
	var toolErr error

	transportwriter.WriteForSurface(transportwriter.SurfaceMCP, envelope, transportwriter.WriterKernel{
		WriteMCPError: func(err error) { toolErr = err },
		WriteMCPSuccess: func(payload any) {
			data, err := json.Marshal(payload)
			if err != nil {
				toolErr = err
				return
			}
			result = &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: string(data)}}}
		},
	})

	return result, nil, toolErr
}

package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/louisbranch/appraisal/internal/platform/requestctx"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/text/language"
)

// contextResourceURI addresses the session context resource.
const contextResourceURI = "context://current"

// Context is the session state shared by tool calls.
type Context struct {
	// Locale selects the language of service error messages. Empty uses the
	// service default.
	Locale string
}

// SetLocaleInput represents the MCP tool input for choosing a locale.
type SetLocaleInput struct {
	Locale string `json:"locale" jsonschema:"BCP 47 language tag such as en-US or pt-BR; empty resets to the service default"`
}

// SetLocaleResult represents the MCP tool output for choosing a locale.
type SetLocaleResult struct {
	Locale string `json:"locale" jsonschema:"canonical locale now in effect; empty means the service default"`
}

// SetLocaleTool defines the MCP tool schema for choosing a locale.
func SetLocaleTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "set_locale",
		Description: "Sets the locale used for valuation service messages in subsequent tool calls",
	}
}

// SetLocaleHandler parses and stores the session locale.
func SetLocaleHandler(setContext func(Context), getContext func() Context) mcp.ToolHandlerFor[SetLocaleInput, SetLocaleResult] {
	return func(_ context.Context, _ *mcp.CallToolRequest, input SetLocaleInput) (*mcp.CallToolResult, SetLocaleResult, error) {
		if setContext == nil || getContext == nil {
			return nil, SetLocaleResult{}, fmt.Errorf("context functions are not configured")
		}
		locale := strings.TrimSpace(input.Locale)
		if locale != "" {
			tag, err := language.Parse(locale)
			if err != nil {
				return nil, SetLocaleResult{}, fmt.Errorf("invalid locale %q: %w", locale, err)
			}
			locale = tag.String()
		}

		current := getContext()
		current.Locale = locale
		setContext(current)
		return &mcp.CallToolResult{}, SetLocaleResult{Locale: locale}, nil
	}
}

// ContextResourcePayload is the JSON body of the context resource.
type ContextResourcePayload struct {
	Context struct {
		Locale *string `json:"locale"`
	} `json:"context"`
}

// ContextResource defines the MCP resource for the current context.
func ContextResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "context_current",
		Title:       "Current Context",
		Description: "Readable current MCP session context (locale)",
		MIMEType:    "application/json",
		URI:         contextResourceURI,
	}
}

// ContextResourceHandler returns a readable current context resource.
func ContextResourceHandler(getContext func() Context) mcp.ResourceHandler {
	return func(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if getContext == nil {
			return nil, fmt.Errorf("context getter function is not configured")
		}
		uri := contextResourceURI
		if req != nil && req.Params != nil && req.Params.URI != "" {
			uri = req.Params.URI
		}
		if uri != contextResourceURI {
			return nil, fmt.Errorf("invalid URI: expected %s, got %q", contextResourceURI, uri)
		}

		current := getContext()
		payload := ContextResourcePayload{}
		if current.Locale != "" {
			payload.Context.Locale = &current.Locale
		}
		return jsonResource(uri, payload)
	}
}

// callContext bounds a valuation call and attaches the session locale.
func callContext(ctx context.Context, getContext func() Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if getContext != nil {
		if locale := getContext().Locale; locale != "" {
			ctx = requestctx.WithLocale(ctx, locale)
		}
	}
	return context.WithTimeout(ctx, grpcCallTimeout)
}

func jsonResource(uri string, payload any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(data),
			},
		},
	}, nil
}

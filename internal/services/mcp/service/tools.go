package service

import (
	"github.com/louisbranch/appraisal/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// registration adds one tool or resource to an MCP server.
type registration struct {
	name string
	add  func(*mcp.Server)
}

func tool[In, Out any](t *mcp.Tool, handler mcp.ToolHandlerFor[In, Out]) registration {
	return registration{name: t.Name, add: func(server *mcp.Server) {
		mcp.AddTool(server, t, handler)
	}}
}

func resource(r *mcp.Resource, handler mcp.ResourceHandler) registration {
	return registration{name: r.URI, add: func(server *mcp.Server) {
		server.AddResource(r, handler)
	}}
}

func resourceTemplate(r *mcp.ResourceTemplate, handler mcp.ResourceHandler) registration {
	return registration{name: r.URITemplate, add: func(server *mcp.Server) {
		server.AddResourceTemplate(r, handler)
	}}
}

// registrations lists the tools and resources bound to client. Valuation
// tools go through the gRPC client; blending and locale tools are local.
func (s *Server) registrations(client domain.ValuationClient) []registration {
	return []registration{
		tool(domain.PropertyValuationTool(), domain.PropertyValuationHandler(client, s.getContext)),
		tool(domain.ValuationGetTool(), domain.ValuationGetHandler(client, s.getContext)),
		tool(domain.ValuationListTool(), domain.ValuationListHandler(client, s.getContext)),
		tool(domain.ValuationRulesTool(), domain.ValuationRulesHandler(client, s.getContext)),
		tool(domain.BlendEstimatesTool(), domain.BlendEstimatesHandler(s.getContext)),
		tool(domain.SetLocaleTool(), domain.SetLocaleHandler(s.setContext, s.getContext)),

		resourceTemplate(domain.ValuationResourceTemplate(), domain.ValuationResourceHandler(client, s.getContext)),
		resource(domain.RulesResource(), domain.RulesResourceHandler(client, s.getContext)),
		resource(domain.ContextResource(), domain.ContextResourceHandler(s.getContext)),
	}
}

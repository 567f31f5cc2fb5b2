package cmd

import (
	"github.com/spf13/cobra"

	httptransport "github.com/spec-kit/backoffice/internal/api/http"
	"github.com/spec-kit/backoffice/internal/api/http/handlers"
	"github.com/spec-kit/backoffice/internal/gateway"
)

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Run the edge gateway",
	Long: `Runs the single public entry point. Allow-listed prefixes pass through;
every other request needs a valid bearer token before it is proxied upstream.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap("gateway", "8080")
		if err != nil {
			return err
		}
		defer rt.close()

		gw := rt.cfg.Gateway
		guard := gateway.NewBearerGuard(rt.tokens, rt.dispatcher, rt.logger, rt.metrics)

		deps := map[string]handlers.Pinger{
			"identity": gateway.UpstreamPinger{URL: gw.IdentityUpstream},
			"employee": gateway.UpstreamPinger{URL: gw.EmployeeUpstream},
		}
		if rt.redis.Enabled() {
			deps["redis"] = rt.redis
		}

		app := rt.newApp()
		httptransport.RegisterGatewayRoutes(app, httptransport.GatewayRouteConfig{
			CommonRoutes: httptransport.CommonRoutes{
				Health:  handlers.NewHealthHandler(rt.cfg.App.Name, rt.cfg.App.Version, deps),
				Metrics: rt.metrics,
			},
			Filter: gateway.NewFilter(gateway.DefaultRules(gw.BypassPrefixes, guard)...),
			Proxy:  gateway.NewProxy(gateway.DefaultRoutes(gw), gw.UpstreamTimeout),
		})

		return rt.serve(app)
	},
}

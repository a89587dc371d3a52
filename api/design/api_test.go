package design

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"goa.design/goa/v3/eval"
	"goa.design/goa/v3/expr"
	goahttp "goa.design/goa/v3/http"

	"fasplanners/internal/transport"
)

func TestDesignMatchesMountedRoutes(t *testing.T) {
	require.NoError(t, eval.RunDSL())
	require.NotNil(t, expr.Root.API)
	assert.Equal(t, "fasplanners", expr.Root.API.Name)

	declared := make(map[string]bool)
	for _, svc := range expr.Root.API.HTTP.Services {
		for _, e := range svc.HTTPEndpoints {
			for _, r := range e.Routes {
				declared[r.Method+" "+r.Path] = true
			}
		}
	}

	server := transport.New(&transport.Endpoints{}, goahttp.NewMuxer(), goahttp.RequestDecoder, goahttp.ResponseEncoder, nil, 0)
	for _, m := range server.Mounts {
		assert.True(t, declared[m.Verb+" "+m.Pattern], "%s %s is mounted but not designed", m.Verb, m.Pattern)
	}
	assert.Len(t, declared, len(server.Mounts))
}

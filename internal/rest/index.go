package rest

import (
	"net/http"

	"github.com/dfryer1193/blogapi/api"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const statusRunLimit = 10

func (h *Handlers) GetIndexStatus(c *gin.Context) {
	snapshot := h.Index.Snapshot()
	status := api.IndexStatus{
		State:      h.Index.State().String(),
		EntryCount: snapshot.Len(),
		Runs:       []api.RebuildRun{},
	}
	if builtAt := snapshot.BuiltAt(); !builtAt.IsZero() {
		status.BuiltAt = &builtAt
	}

	if h.Runs != nil {
		runs, err := h.Runs.ListRuns(c.Request.Context(), statusRunLimit)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to list rebuild runs")
		}
		for _, run := range runs {
			status.Runs = append(status.Runs, api.NewRebuildRun(run))
		}
	}

	c.JSON(http.StatusOK, status)
}

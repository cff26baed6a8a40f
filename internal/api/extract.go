package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/orderlens/order-extract-backend/internal/api/dto"
	"github.com/orderlens/order-extract-backend/internal/extract/page"
	"github.com/orderlens/order-extract-backend/internal/extract/pipeline"
	"github.com/orderlens/order-extract-backend/internal/infrastructure/storage"
)

// postExtract runs the pipeline over a posted page snapshot. The
// response keeps the caller's contract with the pipeline intact: a null
// order list means nothing materialized, an empty list means a source
// was found holding no valid orders.
func (s *Server) postExtract(c *gin.Context) {
	var req dto.ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.BadRequestError("invalid JSON payload"))
		return
	}
	if req.HTML == "" {
		c.JSON(http.StatusBadRequest, dto.ValidationError("html is required"))
		return
	}

	snap, err := page.NewSnapshot(req.HTML, req.Globals)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.BadRequestError("unparsable page html"))
		return
	}

	// advisory only: extraction proceeds regardless
	if !snap.LooksLikeOrderPage() {
		s.logger.Warn("page does not look like an order listing", slog.String("source_url", req.SourceURL))
	}

	orchestrator := pipeline.New(s.pipelineCfg, snap, s.logger)

	started := time.Now()
	result := orchestrator.Extract(c.Request.Context())
	elapsed := time.Since(started)

	run := &storage.ExtractionRun{
		ID:         uuid.NewString(),
		CreatedAt:  started.UTC(),
		SourceURL:  req.SourceURL,
		Strategy:   orchestrator.LastState().String(),
		DurationMS: elapsed.Milliseconds(),
	}

	resp := dto.ExtractResponse{
		RunID:      run.ID,
		Strategy:   run.Strategy,
		DurationMS: run.DurationMS,
	}

	if result != nil {
		resp.Found = true
		resp.Orders = result.Orders
		run.OrderCount = len(result.Orders)

		for _, o := range result.Orders {
			if s.repo.IsProcessed(o.OrderNumber) {
				resp.Duplicates++
				continue
			}
			resp.NewOrders++
			if req.MarkProcessed {
				if err := s.repo.SaveOrder(storage.RecordFromOrder(o, run.ID)); err != nil {
					s.logger.Error("failed to save order",
						slog.String("order_number", o.OrderNumber),
						slog.Any("error", err),
					)
				}
			}
		}
		run.NewOrders = resp.NewOrders
		run.Duplicates = resp.Duplicates
	}

	if err := s.repo.SaveRun(run); err != nil {
		s.logger.Error("failed to save extraction run", slog.Any("error", err))
	}

	c.JSON(http.StatusOK, resp)
}

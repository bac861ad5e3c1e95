package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"tracker-api/domain"
	"tracker-api/storage"
)

// Register wires up all API routes on the provided Echo instance. A nil
// deduper disables create-request idempotency.
func Register(e *echo.Echo, store Store, creator Creator, deduper Deduper, logger *log.Logger) {
	if deduper == nil {
		deduper = noopDeduper{}
	}
	e.GET("/tasks", getTasks(store, logger))
	e.POST("/tasks", createTask(creator, deduper, logger))
	e.PUT("/tasks/:id", updateTask(store))
	e.DELETE("/tasks/:id", deleteTask(store))
	e.GET("/healthz", healthz())
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

func getTasks(store Store, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		ctx := c.Request().Context()
		metrics := newRequestMetrics("GET /tasks", logger)
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		fetchStart := time.Now()
		tasks, fetchErr := store.GetAll(ctx)
		metrics.ObserveStage("fetch", time.Since(fetchStart))
		if fetchErr != nil {
			metrics.SetErrorStage("storage")
			c.Logger().Error(fetchErr)
			err = c.JSON(http.StatusInternalServerError, errorResponse{Error: fetchErr.Error()})
			return err
		}
		metrics.SetTasksReturned(len(tasks))
		if tasks == nil {
			tasks = []domain.Task{}
		}

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, tasks)
		metrics.ObserveStage("encode", time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

func createTask(creator Creator, deduper Deduper, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		ctx := c.Request().Context()
		metrics := newRequestMetrics("POST /tasks", logger)
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		var req createTaskRequest
		if decodeErr := decodeBody(c, &req); decodeErr != nil {
			metrics.SetErrorStage("decode")
			err = c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
			return err
		}
		status, parseErr := domain.ParseStatus(req.Status)
		if parseErr != nil {
			metrics.SetErrorStage("validate")
			err = c.JSON(http.StatusBadRequest, errorResponse{Error: parseErr.Error()})
			return err
		}

		key := c.Request().Header.Get(idempotencyKeyHeader)
		if key == "" {
			key = uuid.NewString()
		}
		c.Response().Header().Set(idempotencyKeyHeader, key)

		added, dedupeErr := deduper.Add(ctx, key)
		if dedupeErr != nil {
			// Deduplication is an availability aid; an unreachable Redis
			// must not block creates.
			logger.WithError(dedupeErr).Warn("idempotency check failed; processing anyway")
			added = true
		}
		if !added {
			metrics.SetErrorStage("duplicate")
			err = c.JSON(http.StatusConflict, errorResponse{Error: "duplicate request"})
			return err
		}

		createStart := time.Now()
		task, createErr := creator.CreateAndEnrich(ctx, req.Title, status)
		metrics.ObserveStage("create", time.Since(createStart))
		if createErr != nil {
			if dedupeErr == nil {
				// Free the key so the client may retry the same request.
				if remErr := deduper.Remove(ctx, key); remErr != nil {
					logger.WithError(remErr).Warn("idempotency key rollback failed")
				}
			}
			err = writeError(c, metrics, createErr)
			return err
		}

		metrics.SetTasksReturned(1)
		encodeStart := time.Now()
		err = c.JSON(http.StatusCreated, task)
		metrics.ObserveStage("encode", time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

func updateTask(store Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid task id"})
		}

		var req updateTaskRequest
		if err := decodeBody(c, &req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}

		patch := storage.TaskPatch{Title: req.Title, Notes: req.Notes}
		if req.Status != nil {
			status, perr := domain.ParseStatus(*req.Status)
			if perr != nil {
				return c.JSON(http.StatusBadRequest, errorResponse{Error: perr.Error()})
			}
			patch.Status = &status
		}

		task, err := store.Update(c.Request().Context(), id, patch)
		if err != nil {
			return writeError(c, nil, err)
		}
		return c.JSON(http.StatusOK, task)
	}
}

func deleteTask(store Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid task id"})
		}
		if err := store.Delete(c.Request().Context(), id); err != nil {
			return writeError(c, nil, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func decodeBody(c echo.Context, dst any) error {
	lr := io.LimitReader(c.Request().Body, taskBodyMaxSize)
	dec := sonic.ConfigStd.NewDecoder(lr)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeError translates domain and storage failures into HTTP responses:
// validation → 400, unknown id → 404, everything else → 500.
func writeError(c echo.Context, metrics *requestMetrics, err error) error {
	var verr domain.ValidationError
	if errors.As(err, &verr) {
		metrics.SetErrorStage("validate")
		return c.JSON(http.StatusBadRequest, errorResponse{Error: verr.Error()})
	}
	var nf storage.NotFoundError
	if errors.As(err, &nf) {
		metrics.SetErrorStage("not_found")
		return c.JSON(http.StatusNotFound, errorResponse{Error: nf.Error()})
	}
	metrics.SetErrorStage("storage")
	c.Logger().Error(err)
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
}

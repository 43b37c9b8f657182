package uploader

import (
	"go.uber.org/zap"

	"shopfeed/internal/batch"
	apperrors "shopfeed/internal/errors"
)

// ReportParseErrors logs every row that could not be parsed.
func ReportParseErrors(logger *zap.Logger, parseErrs []*apperrors.ParseError) {
	if len(parseErrs) == 0 {
		logger.Info("finished without parsing errors")
		return
	}

	logger.Warn("there were parsing errors", zap.Int("count", len(parseErrs)))
	for _, pe := range parseErrs {
		logger.Warn("row could not be parsed",
			zap.Int("row", pe.Row),
			zap.String("product", pe.ProductID),
			zap.String("error", pe.Message),
			zap.String("line", pe.Line))
	}
}

// ReportBatchErrors logs every item the server rejected or never reached.
func ReportBatchErrors(logger *zap.Logger, errs []batch.Error) {
	if len(errs) == 0 {
		logger.Info("finished without service errors")
		return
	}

	logger.Warn("there were service errors", zap.Int("count", len(errs)))
	for _, e := range errs {
		fields := []zap.Field{
			zap.String("product", e.ID),
			zap.Int("code", e.Code),
			zap.String("reason", e.Reason),
		}
		if e.Errors != nil {
			for _, se := range e.Errors.Errors {
				fields = append(fields, zap.String("detail",
					se.Code+" ; "+se.Domain+" ; "+se.InternalReason))
			}
		}
		logger.Warn("service error", fields...)
	}
}

package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tatweer-edu/visit-plans-api/internal/dto"
	"github.com/tatweer-edu/visit-plans-api/internal/models"
	"github.com/tatweer-edu/visit-plans-api/internal/observability"
	"github.com/tatweer-edu/visit-plans-api/internal/repository"
	"github.com/tatweer-edu/visit-plans-api/internal/spreadsheet"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Import domain errors.
var (
	ErrNoImportFiles      = errors.New("no import files provided")
	ErrNotSpreadsheet     = errors.New("file is not an xlsx spreadsheet")
	ErrSubmissionNotFound = errors.New("import submission not found")
)

// importSourceOrder fixes the dependency order: assignments resolve both
// schools and supervisors, so those import first.
var importSourceOrder = []string{
	models.ImportSourceSchoolsBoys,
	models.ImportSourceSchoolsGirls,
	models.ImportSourcePrincipals,
	models.ImportSourceSupervisors,
	models.ImportSourceAssignments,
}

// ImportService processes spreadsheet upload submissions. All writes for one
// submission share a single transaction: a failure rolls back every file.
type ImportService interface {
	Process(ctx context.Context, files map[string]*multipart.FileHeader) (dto.ImportResultResponse, error)
	RejectedRows(ctx context.Context, submissionID string) ([]models.RejectedRow, error)
}

type importService struct {
	repo   repository.ImportRepository
	events NotificationService
	logger zerolog.Logger
}

// NewImportService builds a new import service.
func NewImportService(repo repository.ImportRepository, events NotificationService, logger zerolog.Logger) ImportService {
	return &importService{
		repo:   repo,
		events: events,
		logger: logger.With().Str("component", "import_service").Logger(),
	}
}

func (s *importService) Process(ctx context.Context, files map[string]*multipart.FileHeader) (dto.ImportResultResponse, error) {
	if len(files) == 0 {
		return dto.ImportResultResponse{}, ErrNoImportFiles
	}

	tracer := otel.Tracer("github.com/tatweer-edu/visit-plans-api/internal/service/import")
	ctx, span := tracer.Start(ctx, "import.process")
	defer span.End()

	submissionID := uuid.NewString()
	span.SetAttributes(
		attribute.String("import.submission_id", submissionID),
		attribute.Int("import.files", len(files)),
	)

	type parsedFile struct {
		source   string
		fileName string
		rows     []spreadsheet.Row
	}

	// Parse everything up front so malformed files fail before any write.
	parsed := make([]parsedFile, 0, len(files))
	for _, source := range importSourceOrder {
		header, ok := files[source]
		if !ok || header == nil {
			continue
		}
		rows, err := s.readRows(header)
		if err != nil {
			return dto.ImportResultResponse{}, fmt.Errorf("%s: %w", source, err)
		}
		parsed = append(parsed, parsedFile{source: source, fileName: header.Filename, rows: rows})
	}
	if len(parsed) == 0 {
		return dto.ImportResultResponse{}, ErrNoImportFiles
	}

	batches := make([]models.ImportBatch, 0, len(parsed))
	err := s.repo.InTransaction(ctx, func(tx repository.ImportRepository) error {
		for _, file := range parsed {
			batch, err := s.runImporter(ctx, tx, file.source, file.fileName, file.rows)
			if err != nil {
				return err
			}
			batch.SubmissionID = submissionID
			if err := tx.CreateBatch(ctx, &batch); err != nil {
				return err
			}
			batches = append(batches, batch)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return dto.ImportResultResponse{}, err
	}

	rejected := 0
	for _, batch := range batches {
		rejected += batch.Skipped
		observability.ImportRows().WithLabelValues(batch.Source, "created").Add(float64(batch.Created))
		observability.ImportRows().WithLabelValues(batch.Source, "updated").Add(float64(batch.Updated))
		observability.ImportRows().WithLabelValues(batch.Source, "skipped").Add(float64(batch.Skipped))
	}

	s.logger.Info().
		Str("submission_id", submissionID).
		Int("files", len(batches)).
		Int("rejected", rejected).
		Msg("import submission processed")

	if s.events != nil {
		message := fmt.Sprintf("اكتمل استيراد %d ملفات (%d صفوف مرفوضة)", len(batches), rejected)
		if err := s.events.Publish(ctx, models.NotificationImportCompleted, message, nil, map[string]any{
			"submission_id": submissionID,
			"rejected":      rejected,
		}); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish import event")
		}
	}

	return dto.NewImportResultResponse(submissionID, batches), nil
}

func (s *importService) RejectedRows(ctx context.Context, submissionID string) ([]models.RejectedRow, error) {
	rows, err := s.repo.ListRejectedBySubmission(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	if len(rows) == 0 {
		batches, err := s.repo.ListBatchesBySubmission(ctx, submissionID)
		if err != nil {
			return nil, err
		}
		if len(batches) == 0 {
			return nil, ErrSubmissionNotFound
		}
	}
	return rows, nil
}

// readRows loads the upload fully into memory, sniffs the content type and
// extracts the worksheet rows.
func (s *importService) readRows(header *multipart.FileHeader) ([]spreadsheet.Row, error) {
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	if !mimetype.Detect(data).Is(xlsxMIME) {
		return nil, ErrNotSpreadsheet
	}

	return spreadsheet.Rows(bytes.NewReader(data))
}

func (s *importService) runImporter(ctx context.Context, tx repository.ImportRepository, source, fileName string, rows []spreadsheet.Row) (models.ImportBatch, error) {
	batch := models.ImportBatch{Source: source, FileName: fileName}

	for _, row := range rows {
		var created bool
		var reason string
		var err error

		switch source {
		case models.ImportSourceSchoolsBoys:
			created, reason, err = importSchool(ctx, tx, row, models.SchoolGenderBoys)
		case models.ImportSourceSchoolsGirls:
			created, reason, err = importSchool(ctx, tx, row, models.SchoolGenderGirls)
		case models.ImportSourcePrincipals:
			created, reason, err = importPrincipal(ctx, tx, row)
		case models.ImportSourceSupervisors:
			created, reason, err = importSupervisor(ctx, tx, row)
		case models.ImportSourceAssignments:
			created, reason, err = importAssignment(ctx, tx, row)
		default:
			return models.ImportBatch{}, fmt.Errorf("unknown import source %q", source)
		}
		if err != nil {
			return models.ImportBatch{}, err
		}

		if reason != "" {
			batch.Skipped++
			batch.RejectedRows = append(batch.RejectedRows, models.RejectedRow{
				Importer: source,
				Reason:   reason,
				Row:      rowToJSON(row),
			})
			continue
		}
		if created {
			batch.Created++
		} else {
			batch.Updated++
		}
	}

	return batch, nil
}

// importSchool upserts one school row. Gender comes from which file the row
// arrived in, not from the sheet.
func importSchool(ctx context.Context, tx repository.ImportRepository, row spreadsheet.Row, gender string) (bool, string, error) {
	statCode := spreadsheet.Code(row.Get(spreadsheet.FieldStatCode))
	if statCode == "" {
		return false, "الرمز الإحصائي مفقود", nil
	}
	name := row.Get(spreadsheet.FieldName)
	if name == "" {
		return false, "اسم المدرسة مفقود", nil
	}

	created, err := tx.UpsertSchool(ctx, statCode, models.School{
		Name:          name,
		Gender:        gender,
		EducationType: row.Get(spreadsheet.FieldEducationType),
		Stage:         row.Get(spreadsheet.FieldStage),
		IsActive:      spreadsheet.ParseBool(row.Get(spreadsheet.FieldIsActive)),
	})
	return created, "", err
}

func importPrincipal(ctx context.Context, tx repository.ImportRepository, row spreadsheet.Row) (bool, string, error) {
	rawCode := row.Get(spreadsheet.FieldSchoolStatCode, spreadsheet.FieldStatCode)
	school, reason, err := resolveSchool(ctx, tx, rawCode)
	if err != nil || reason != "" {
		return false, reason, err
	}

	fullName := row.Get(spreadsheet.FieldFullName, spreadsheet.FieldName)
	if fullName == "" {
		return false, "اسم المدير مفقود", nil
	}

	created, err := tx.UpsertPrincipal(ctx, school.ID, models.Principal{
		FullName:   fullName,
		Mobile:     spreadsheet.Digits(row.Get(spreadsheet.FieldMobile)),
		NationalID: spreadsheet.Digits(row.Get(spreadsheet.FieldNationalID)),
		Sector:     row.Get(spreadsheet.FieldSector),
	})
	return created, "", err
}

func importSupervisor(ctx context.Context, tx repository.ImportRepository, row spreadsheet.Row) (bool, string, error) {
	nationalID := spreadsheet.Digits(row.Get(spreadsheet.FieldNationalID))
	if len(nationalID) != 10 {
		return false, fmt.Sprintf("رقم هوية غير صالح: %q", row.Get(spreadsheet.FieldNationalID)), nil
	}
	fullName := row.Get(spreadsheet.FieldFullName, spreadsheet.FieldName)
	if fullName == "" {
		return false, "اسم المشرف مفقود", nil
	}

	created, err := tx.UpsertSupervisor(ctx, nationalID, models.Supervisor{
		FullName:   fullName,
		Mobile:     spreadsheet.Digits(row.Get(spreadsheet.FieldMobile)),
		Department: row.Get(spreadsheet.FieldDepartment),
		IsActive:   spreadsheet.ParseBool(row.Get(spreadsheet.FieldIsActive)),
	})
	return created, "", err
}

func importAssignment(ctx context.Context, tx repository.ImportRepository, row spreadsheet.Row) (bool, string, error) {
	nationalID := spreadsheet.Digits(row.Get(spreadsheet.FieldSupervisorNationalID, spreadsheet.FieldNationalID))
	if nationalID == "" {
		// Recovery for malformed sheets that put the ID inside the name cell.
		nationalID = spreadsheet.Digits(row.Get(spreadsheet.FieldSupervisorName))
	}
	if nationalID == "" {
		return false, "رقم هوية المشرف مفقود", nil
	}

	supervisor, err := tx.FindSupervisorByNationalID(ctx, nationalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Sprintf("المشرف غير موجود: %s", nationalID), nil
		}
		return false, "", err
	}

	rawCode := row.Get(spreadsheet.FieldSchoolStatCode, spreadsheet.FieldStatCode)
	school, reason, err := resolveSchool(ctx, tx, rawCode)
	if err != nil || reason != "" {
		return false, reason, err
	}

	created, err := tx.UpsertAssignment(ctx, supervisor.ID, school.ID, spreadsheet.ParseBool(row.Get(spreadsheet.FieldIsActive)))
	return created, "", err
}

// resolveSchool looks up a school by statistical code, retrying with a
// digits-only reading when the literal code does not match.
func resolveSchool(ctx context.Context, tx repository.ImportRepository, raw string) (models.School, string, error) {
	code := spreadsheet.Code(raw)
	if code == "" {
		return models.School{}, "الرمز الإحصائي للمدرسة مفقود", nil
	}

	school, err := tx.FindSchoolByStatCode(ctx, code)
	if err == nil {
		return school, "", nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.School{}, "", err
	}

	if digits := spreadsheet.Digits(raw); digits != "" && digits != code {
		school, err = tx.FindSchoolByStatCode(ctx, digits)
		if err == nil {
			return school, "", nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return models.School{}, "", err
		}
	}

	return models.School{}, fmt.Sprintf("المدرسة غير موجودة: %s", code), nil
}

func rowToJSON(row spreadsheet.Row) datatypes.JSONMap {
	out := make(datatypes.JSONMap, len(row))
	for key, value := range row {
		out[key] = value
	}
	return out
}

package repository

import (
	"context"
	"strings"
)

// TutorSearchQuery defines filters and pagination for searching tutors.
type TutorSearchQuery struct {
	Name      string
	Subject   string
	MinRating float64
	Page      int
	PageSize  int
}

// PublicTutorRow is the sanitized search result shape. OpenSlots
// counts FREE slots from today onward.
type PublicTutorRow struct {
	ID          uint64  `json:"id"`
	DisplayName string  `json:"display_name"`
	Subject     string  `json:"subject,omitempty"`
	Rating      float64 `json:"rating"`
	RatingCount uint32  `json:"rating_count"`
	OpenSlots   int64   `json:"open_slots"`
}

// SearchTutors returns a page of tutors matching the filters plus the
// total match count. Filters compose with AND; empty filters are
// skipped.
func (r *ProfileRepo) SearchTutors(ctx context.Context, q TutorSearchQuery) ([]PublicTutorRow, int64, error) {
	where := []string{}
	args := []any{}

	if q.Name != "" {
		where = append(where, "LOWER(t.display_name) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Name)+"%")
	}
	if q.Subject != "" {
		where = append(where, "LOWER(COALESCE(t.subject, '')) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Subject)+"%")
	}
	if q.MinRating > 0 {
		where = append(where, "t.rating >= ?")
		args = append(args, q.MinRating)
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	countSQL := `SELECT COUNT(*) FROM tutors t WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize

	dataSQL := `SELECT
			t.id,
			t.display_name,
			COALESCE(t.subject, '') AS subject,
			t.rating,
			t.rating_count,
			(SELECT COUNT(*) FROM slots s
				WHERE s.tutor_id = t.id
				  AND s.status = 'FREE'
				  AND s.slot_date >= CURDATE()) AS open_slots
		FROM tutors t
		WHERE ` + cond + `
		ORDER BY t.rating DESC, t.rating_count DESC, t.id ASC
		LIMIT ? OFFSET ?`

	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]PublicTutorRow, 0, limit)
	for rows.Next() {
		var d PublicTutorRow
		if err := rows.Scan(
			&d.ID,
			&d.DisplayName,
			&d.Subject,
			&d.Rating,
			&d.RatingCount,
			&d.OpenSlots,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

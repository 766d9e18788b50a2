package debug

import (
	"context"
	"database/sql"

	"github.com/ezekaj/learning-sol-sub000/shared/logger"
)

// PruneChatMessages deletes all chat_messages (dev-only helper).
func PruneChatMessages(db *sql.DB) error {
	ctx := context.Background()
	res, err := db.ExecContext(ctx, `DELETE FROM chat_messages`)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n >= 0 {
		logger.Infof("[Debug] Pruned chat_messages rows: %d", n)
	}
	return nil
}

package queries

const FindActiveUserQuery = `SELECT id, username, email, COALESCE(full_name, ''), is_admin FROM users WHERE id = $1 AND is_active = TRUE`

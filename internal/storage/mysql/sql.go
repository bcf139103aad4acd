package mysql

// Phone and images keep their stored value when the new one is empty, so a
// sync that only sees a phone does not wipe known images.
const upsertEntrySQL = `
INSERT INTO directory_entries
  (category, id, phone, images)
VALUES
  (?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  phone      = COALESCE(VALUES(phone), directory_entries.phone),
  images     = COALESCE(VALUES(images), directory_entries.images),
  updated_at = CURRENT_TIMESTAMP
`

const insertMissSQL = `
INSERT INTO sync_misses (category, lat, lng, reason)
VALUES (?, ?, ?, ?)
ON DUPLICATE KEY UPDATE reason = VALUES(reason), seen_at = CURRENT_TIMESTAMP
`

// lookupEntriesPrefix is completed with one placeholder per id.
const lookupEntriesPrefix = `
SELECT id, phone, images
FROM directory_entries
WHERE category = ? AND id IN (`

// Package cryptox computes the hashes the file storage is keyed by.
package cryptox

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// ContentHash returns the hex SHA-1 of data, the blob store key.
func ContentHash(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

// PathnameHash returns the hex SHA-1 of the full file location
// "/contextid/component/filearea/itemid" + filepath + filename, the unique
// key of a stored file.
func PathnameHash(contextID int64, component, fileArea string, itemID int64, filePath, fileName string) string {
	s := fmt.Sprintf("/%d/%s/%s/%d%s%s", contextID, component, fileArea, itemID, filePath, fileName)
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

package validation

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	UserIDMinLen         = 3
	UserIDMaxLen         = 128
	MaxTags              = 10
	MaxTagLength         = 50
	MaxDescriptionLength = 500
	MaxFilenameLength    = 255
)

var (
	userIDPattern  = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	tagPattern     = regexp.MustCompile(`^[a-zA-Z0-9 _-]+$`)
	imageIDPattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	unsafeChars    = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
)

func UserID(userID string) error {
	if userID == "" {
		return fmt.Errorf("user ID is required")
	}
	if len(userID) < UserIDMinLen || len(userID) > UserIDMaxLen {
		return fmt.Errorf("user ID must be between %d and %d characters", UserIDMinLen, UserIDMaxLen)
	}
	if !userIDPattern.MatchString(userID) {
		return fmt.Errorf("user ID can only contain letters, numbers, hyphens, and underscores")
	}
	return nil
}

func ImageID(imageID string) error {
	if imageID == "" {
		return fmt.Errorf("image ID is required")
	}
	if !imageIDPattern.MatchString(strings.ToLower(imageID)) {
		return fmt.Errorf("invalid image ID format")
	}
	return nil
}

func ContentType(contentType string, allowed []string) error {
	if contentType == "" {
		return fmt.Errorf("content type is required")
	}
	for _, ct := range allowed {
		if strings.EqualFold(contentType, ct) {
			return nil
		}
	}
	return fmt.Errorf("content type %q is not allowed, allowed types: %s", contentType, strings.Join(allowed, ", "))
}

func Size(size, maxSize int64) error {
	if size <= 0 {
		return fmt.Errorf("file size must be greater than 0")
	}
	if size > maxSize {
		return fmt.Errorf("file size (%.2f MB) exceeds maximum allowed size (%.2f MB)",
			float64(size)/(1024*1024), float64(maxSize)/(1024*1024))
	}
	return nil
}

func Tags(tags []string) error {
	if len(tags) > MaxTags {
		return fmt.Errorf("maximum %d tags allowed", MaxTags)
	}
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			return fmt.Errorf("tags cannot be empty")
		}
		if len(tag) > MaxTagLength {
			return fmt.Errorf("tag %q exceeds maximum length of %d characters", tag[:20]+"...", MaxTagLength)
		}
		if !tagPattern.MatchString(tag) {
			return fmt.Errorf("tag %q contains invalid characters", tag)
		}
	}
	return nil
}

func Description(description string) error {
	if len(description) > MaxDescriptionLength {
		return fmt.Errorf("description exceeds maximum length of %d characters", MaxDescriptionLength)
	}
	return nil
}

// SanitizeFilename strips path components and characters that are unsafe in
// object keys, trims surrounding dots and spaces, and caps the length while
// keeping the extension intact. Empty results become "unnamed".
func SanitizeFilename(filename string) string {
	if filename == "" {
		return "unnamed"
	}

	if i := strings.LastIndex(filename, "/"); i >= 0 {
		filename = filename[i+1:]
	}
	if i := strings.LastIndex(filename, `\`); i >= 0 {
		filename = filename[i+1:]
	}

	filename = unsafeChars.ReplaceAllString(filename, "_")
	filename = strings.Trim(filename, " .")

	if len(filename) > MaxFilenameLength {
		if dot := strings.LastIndex(filename, "."); dot > 0 {
			name, ext := filename[:dot], filename[dot+1:]
			keep := MaxFilenameLength - len(ext) - 1
			if keep < 0 {
				keep = 0
			}
			filename = name[:min(keep, len(name))] + "." + ext
		} else {
			filename = filename[:MaxFilenameLength]
		}
	}

	if filename == "" {
		return "unnamed"
	}
	return filename
}

// Package locale renders task priorities in the user's language and parses
// localized priority labels back into canonical values.
package locale

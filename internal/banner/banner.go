// Package banner renders the CLI start-up banner.
package banner

import "fmt"

const art = `                 _
 _ __   ___  ___| |_ __ _  __ _
| '_ \ / _ \/ __| __/ _' |/ _' |
| |_) | (_) \__ \ || (_| | (_| |
| .__/ \___/|___/\__\__,_|\__, |
|_|                       |___/
`

// Banner returns the banner text with the version line.
func Banner(version string) string {
	return fmt.Sprintf("%s  part-of-speech tagger %s\n\n", art, version)
}

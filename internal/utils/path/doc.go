// Package pathutils resolves user-supplied directories for process launches.
package pathutils

// Package autoload registers every built-in channel factory.
package autoload

import (
	_ "scriptura/pkg/channels/telegram"
	_ "scriptura/pkg/channels/web"
)

package app

import (
	"github.com/vk/flownet/internal/registry"
	"github.com/vk/flownet/modules/boundary"
	"github.com/vk/flownet/modules/mixer"
	"github.com/vk/flownet/modules/recycler"
	"github.com/vk/flownet/modules/sink"
	"github.com/vk/flownet/modules/source"
)

// coreModules is the default set of built-in process handler modules,
// registered when the caller does not supply its own.
var coreModules = []registry.Module{
	source.Module{},
	sink.Module{},
	boundary.Module{},
	mixer.Module{},
	recycler.Module{},
}

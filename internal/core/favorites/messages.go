package favorites

type messages struct {
	saved         string
	duplicate     string
	saveFailed    string
	loadFailed    string
	invalidID     string
	notFound      string
	confirmRemove string
	removed       string
	removeFailed  string
	confirmClear  string
	cleared       string
}

var english = messages{
	saved:         "Recipe saved to favorites!",
	duplicate:     "Recipe already in favorites!",
	saveFailed:    "Failed to save favorite.",
	loadFailed:    "Failed to load favorites.",
	invalidID:     "Cannot remove recipe: Invalid ID",
	notFound:      "Recipe not found in favorites.",
	confirmRemove: "Are you sure you want to remove this recipe?",
	removed:       "Recipe removed from favorites",
	removeFailed:  "Failed to remove favorite.",
	confirmClear:  "Are you sure you want to remove all favorites?",
	cleared:       "All favorites removed",
}

var spanish = messages{
	saved:         "¡Receta guardada en favoritos!",
	duplicate:     "¡La receta ya está en favoritos!",
	saveFailed:    "No se pudo guardar el favorito.",
	loadFailed:    "No se pudieron cargar los favoritos.",
	invalidID:     "No se puede eliminar la receta: ID inválido",
	notFound:      "Receta no encontrada en favoritos.",
	confirmRemove: "¿Seguro que quieres eliminar esta receta?",
	removed:       "Receta eliminada de favoritos",
	removeFailed:  "No se pudo eliminar el favorito.",
	confirmClear:  "¿Seguro que quieres eliminar todos los favoritos?",
	cleared:       "Todos los favoritos eliminados",
}

func messagesFor(language string) messages {
	if language == "spanish" || language == "es" {
		return spanish
	}
	return english
}

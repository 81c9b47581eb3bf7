package entity

// Product producto del catálogo. El SKU lo declara único el servicio remoto; el cliente no lo valida.
type Product struct {
	ID          int64
	SKU         string
	Name        string
	CategoryID  int64
	Category    *Category // detalle desnormalizado (category_details), puede faltar
	Description string
	ImageRef    string // URL o ruta de la imagen, vacío si no hay
}

// CategoryName nombre de la categoría o "" si el detalle no vino en la respuesta.
func (p Product) CategoryName() string {
	if p.Category == nil {
		return ""
	}
	return p.Category.Name
}

// NewProduct campos para crear un producto nuevo.
type NewProduct struct {
	Name        string
	SKU         string
	CategoryID  int64
	Description string
}

// ProductImage imagen opcional que acompaña la creación de un producto.
type ProductImage struct {
	Filename    string
	ContentType string
	Data        []byte
}

package catalog

// aliases.go holds the built-in alias database: the header spellings observed
// across QuickBooks, Xero, Harvest, FreshBooks and Wave exports, plus generic
// spreadsheet conventions.
//
// Spellings are stored as seen in the wild; registration normalizes them, so
// "Invoice #" and "invoice#" collapse to the same entry. Where two source
// systems use the same word for different things (e.g. "amount" as a line
// total vs. a quantity), the spelling is assigned to the field it most
// commonly means and the conflict is left to the fuzzy matcher's scoring.

// Default returns the built-in catalog.
// The same instance is shared process-wide; it is never mutated after build.
func Default() *Catalog {
	return defaultCatalog
}

var defaultCatalog = build()

func build() *Catalog {
	c := &Catalog{
		byName:  make(map[FieldName]*Field),
		byAlias: make(map[string]*Field),
	}

	c.add(&Field{Name: FieldInvoiceNumber, Kind: KindText, Scope: ScopeInvoice, Required: true},
		// QuickBooks Online
		"invoice #", "invoice number", "invoice no", "invoicenumber", "invoice_number",
		// QuickBooks Desktop
		"ref number", "refnumber", "ref #", "ref", "transaction number", "trans #",
		"num", "number", "doc number", "docnumber", "document number",
		// Xero
		"invoice id", "invoiceid", "reference", "invoice reference",
		// Harvest
		"invoice code", "invoice#", "id",
		// FreshBooks
		"invoice_id", "invoicecode",
		// Wave
		"invoice identifier", "bill number",
		// Generic
		"inv #", "inv no", "inv number", "inv_no", "inv_num",
	)

	c.add(&Field{Name: FieldInvoiceDate, Kind: KindDate, Scope: ScopeInvoice, Required: true},
		"date", "invoice date", "invoicedate", "invoice_date", "trans date",
		"transaction date", "txn date", "txndate", "billing date",
		"date created", "created date", "creation date", "issue date",
		"sent date", "issued", "issued date", "issued on",
		"inv date", "inv_date", "bill date", "billed date", "billed on",
	)

	c.add(&Field{Name: FieldDueDate, Kind: KindDate, Scope: ScopeInvoice},
		"due date", "duedate", "due_date", "payment due", "paymentdue",
		"payment due date", "terms date", "termsdate", "due by",
		"payment date", "paymentdate", "pay by date", "expiry date",
		"due on", "payment deadline", "term date",
	)

	c.add(&Field{Name: FieldClientName, Kind: KindText, Scope: ScopeInvoice, Required: true},
		"customer", "customer name", "customername", "customer_name",
		"client", "client name", "clientname", "client_name",
		"bill to", "bill_to", "billto", "bill to name",
		"sold to", "sold_to", "soldto",
		"contact", "contact name", "customer/contact",
		"company", "company name", "companyname", "organization",
		"business name", "business", "account", "account name",
		"customer:company", "customer company", "name",
	)

	c.add(&Field{Name: FieldClientEmail, Kind: KindText, Scope: ScopeInvoice},
		"email", "e-mail", "email address", "emailaddress", "email_address",
		"customer email", "customeremail", "customer_email",
		"client email", "clientemail", "client_email",
		"contact email", "contactemail", "contact_email",
		"bill to email", "billing email", "invoice email",
		"primary email", "email 1", "email1", "customer:email",
	)

	c.add(&Field{Name: FieldClientAddress, Kind: KindText, Scope: ScopeInvoice},
		"address", "billing address", "billingaddress", "billing_address",
		"bill to address", "customer address", "customeraddress",
		"street address", "street", "ship to", "shipto",
		"address line 1", "addressline1", "address1", "addr1",
		"address line 2", "addressline2", "address2", "addr2",
		"bill addr line 1", "billing addr 1",
		"city", "billing city", "customer city", "town",
		"state", "state/province", "province", "region",
		"billing state", "customer state",
		"zip", "zip code", "zipcode", "postal code", "postalcode",
		"billing zip", "customer zip",
	)

	c.add(&Field{Name: FieldDescription, Kind: KindText, Scope: ScopeLineItem, Required: true},
		"description", "item description", "service description",
		"product/service", "product_service", "product or service",
		"item", "item name", "itemname", "item_name",
		"service", "service name", "servicename",
		"description & qty", "line description",
		"task", "task name", "activity", "service item",
		"product", "product name", "productname", "product description",
		"service type", "line item", "lineitem", "line_item",
		"details", "item details", "description/notes",
		"sku", "sku description", "class",
	)

	c.add(&Field{Name: FieldQuantity, Kind: KindNumber, Scope: ScopeLineItem},
		"qty", "quantity", "units", "hours",
		"qty sold", "qtysold", "quantity sold", "units sold",
		"billable hours", "billable qty", "item qty",
		"count", "volume", "billing quantity",
	)

	c.add(&Field{Name: FieldRate, Kind: KindMoney, Scope: ScopeLineItem},
		"rate", "price", "unit price", "unitprice", "unit_price",
		"sales price", "salesprice", "sales_price",
		"unit cost", "unitcost", "unit_cost", "cost per unit",
		"hourly rate", "hourlyrate", "hourly_rate", "billing rate",
		"price each", "priceeach", "price_each", "each",
		"cost", "rate/price", "rate price", "charge", "fee",
	)

	c.add(&Field{Name: FieldAmount, Kind: KindMoney, Scope: ScopeLineItem},
		"amount", "line amount", "lineamount", "line_amount",
		"line total", "linetotal", "line_total",
		"extended amount", "extendedamount", "extended_amount",
		"line amount tax", "line amount no tax",
		"item total", "line price", "sum",
	)

	c.add(&Field{Name: FieldSubtotal, Kind: KindMoney, Scope: ScopeInvoice},
		"subtotal", "sub total", "sub-total", "sub_total",
		"net amount", "netamount", "net_amount",
		"total before tax", "amount before tax",
		"taxable amount", "taxableamount", "pre-tax total",
		"items total", "line items total",
	)

	c.add(&Field{Name: FieldTaxRate, Kind: KindNumber, Scope: ScopeInvoice},
		"tax rate", "taxrate", "tax_rate", "tax percent",
		"tax percentage", "sales tax rate", "salestaxrate",
		"gst rate", "vat rate", "tax code rate", "rate of tax",
	)

	c.add(&Field{Name: FieldTaxAmount, Kind: KindMoney, Scope: ScopeInvoice},
		"tax", "tax amount", "taxamount", "tax_amount",
		"sales tax", "salestax", "sales_tax",
		"gst", "gst amount", "vat", "vat amount",
		"tax total", "taxtotal", "total tax",
		"tax charged", "tax applied", "tax value",
	)

	c.add(&Field{Name: FieldTotal, Kind: KindMoney, Scope: ScopeInvoice},
		"total", "grand total", "grandtotal", "grand_total",
		"invoice total", "invoicetotal", "invoice_total",
		"amount due", "amountdue", "amount_due",
		"balance", "balance due", "balancedue",
		"total amount", "totalamount", "final total",
		"amount owing", "total with tax", "final amount",
	)

	c.add(&Field{Name: FieldTerms, Kind: KindText, Scope: ScopeInvoice},
		"terms", "payment terms", "paymentterms", "payment_terms",
		"term", "due terms", "invoice terms", "billing terms",
		"net terms", "due net", "payment method",
	)

	c.add(&Field{Name: FieldNotes, Kind: KindText, Scope: ScopeInvoice},
		"notes", "memo", "message", "customer message", "customermessage",
		"comments", "remarks", "note to customer",
		"invoice message", "invoice note", "additional info",
		"special instructions", "instructions",
	)

	c.add(&Field{Name: FieldCurrency, Kind: KindText, Scope: ScopeInvoice},
		"currency", "currency code", "currencycode", "curr",
		"transaction currency", "billing currency",
		"home currency", "foreign currency",
	)

	c.add(&Field{Name: FieldStatus, Kind: KindText, Scope: ScopeInvoice},
		"status", "invoice status", "payment status", "paymentstatus",
		"paid status", "condition", "paid/unpaid",
		"open/closed", "sent/unsent",
	)

	c.add(&Field{Name: FieldPONumber, Kind: KindText, Scope: ScopeInvoice},
		"po #", "po number", "ponumber", "po_number",
		"purchase order", "purchase order #", "p.o. number",
		"po", "purchase order number", "client po",
	)

	return c
}
